package types

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ContractDocs describes the NatSpec documentation lookups for a contract's functions. Both mappings are keyed by
// the canonical function signature, e.g. `transfer(address,uint256)`.
type ContractDocs struct {
	// DevDoc maps a function signature to the `details` string of the developer documentation.
	DevDoc map[string]string

	// UserDoc maps a function signature to the `notice` string of the user documentation.
	UserDoc map[string]string
}

// NewContractDocs returns an empty ContractDocs.
func NewContractDocs() ContractDocs {
	return ContractDocs{
		DevDoc:  make(map[string]string),
		UserDoc: make(map[string]string),
	}
}

// Detail returns the documentation string for the function with the given signature. The developer documentation
// is preferred over the user documentation. Returns false if neither provides one.
func (d ContractDocs) Detail(signature string) (string, bool) {
	if detail, ok := d.DevDoc[signature]; ok && detail != "" {
		return detail, true
	}
	if notice, ok := d.UserDoc[signature]; ok && notice != "" {
		return notice, true
	}
	return "", false
}

// natSpecDoc describes the parts of a solc devdoc/userdoc object we read.
type natSpecDoc struct {
	Methods map[string]json.RawMessage `json:"methods"`
}

// natSpecMethod describes a single method entry of a devdoc/userdoc object.
type natSpecMethod struct {
	Details string `json:"details"`
	Notice  string `json:"notice"`
}

// ParseContractDocs parses the devdoc and userdoc JSON objects emitted by solc. Either may be nil or empty.
// Returns an error if a provided object is malformed.
func ParseContractDocs(devdoc json.RawMessage, userdoc json.RawMessage) (ContractDocs, error) {
	docs := NewContractDocs()

	devMethods, err := parseNatSpecMethods(devdoc)
	if err != nil {
		return docs, errors.Wrap(err, "could not parse devdoc")
	}
	for signature, method := range devMethods {
		if method.Details != "" {
			docs.DevDoc[signature] = method.Details
		}
	}

	userMethods, err := parseNatSpecMethods(userdoc)
	if err != nil {
		return docs, errors.Wrap(err, "could not parse userdoc")
	}
	for signature, method := range userMethods {
		if method.Notice != "" {
			docs.UserDoc[signature] = method.Notice
		}
	}
	return docs, nil
}

// parseNatSpecMethods decodes the `methods` table of a devdoc/userdoc object.
func parseNatSpecMethods(data json.RawMessage) (map[string]natSpecMethod, error) {
	methods := make(map[string]natSpecMethod)
	if len(data) == 0 || string(data) == "null" {
		return methods, nil
	}

	// Some toolchains serialize the documentation as a JSON string containing the object.
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		if encoded == "" {
			return methods, nil
		}
		data = json.RawMessage(encoded)
	}

	var doc natSpecDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WithStack(err)
	}

	for signature, raw := range doc.Methods {
		// Older compilers emit userdoc entries as plain notice strings.
		var notice string
		if err := json.Unmarshal(raw, &notice); err == nil {
			methods[signature] = natSpecMethod{Notice: notice}
			continue
		}

		var method natSpecMethod
		if err := json.Unmarshal(raw, &method); err != nil {
			return nil, errors.Wrapf(err, "malformed documentation entry for '%s'", signature)
		}
		methods[signature] = method
	}
	return methods, nil
}

package bindgen

import (
	"text/template"
)

// accessorData is the data required to render the accessors of a single function.
type accessorData struct {
	// Contract is the generated contract type name.
	Contract string

	*FunctionBinding
}

// fileData is the data required to render a complete binding file.
type fileData struct {
	// Package is the name of the package the generated file belongs to.
	Package string

	// CompilerVersion is the compiler version recorded in the contract metadata, if known.
	CompilerVersion string

	// Imports are the rendered import specs, in order.
	Imports []string

	// Contract is the generated contract type name.
	Contract string

	// ABI is the raw contract ABI as a quoted Go string literal.
	ABI string

	// Deployments maps network names to the checksummed address the contract is deployed at.
	Deployments map[string]string

	// Functions are the resolved and rendered function bindings.
	Functions []*FunctionBinding

	// Fallback indicates whether the contract declares a fallback or receive function.
	Fallback bool
}

// templateAccessor is the template for a function's callable accessor on the methods container.
const templateAccessor = `
// {{.Identifier}} binds the contract function ` + "`{{.CommentSignature}}`" + ` with selector {{.SelectorHex}}.
//
{{range .DocLines}}//{{if .}} {{.}}{{end}}
{{end}}func (m *{{.Contract}}Methods) {{.Identifier}}({{.Params}}) *contract.{{.Builder}}[{{.Output}}] {
	call, err := contract.{{.Constructor}}[{{.Output}}](m.instance, {{.SelectorLiteral}}{{if .Inputs}}, {{.Args}}{{end}})
	if err != nil {
		panic("generated call: " + err.Error())
	}
	return call
}
`

// templateSignatureAccessor is the template for a function's signature accessor on the signatures container.
const templateSignatureAccessor = `
// {{.Identifier}} returns the signature of the contract function ` + "`{{.CommentSignature}}`" + `.
func ({{.Contract}}Signatures) {{.Identifier}}() contract.Signature[{{.InputTuple}}, {{.Output}}] {
	return contract.NewSignature[{{.InputTuple}}, {{.Output}}]({{.SelectorLiteral}})
}
`

// templateFile is the template for a complete binding file, assembled from the rendered accessors.
const templateFile = `// Code generated by abibind. DO NOT EDIT.
{{- if .CompilerVersion}}
// Source compiled with solc {{.CompilerVersion}}.
{{- end}}

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)

// {{.Contract}}ABI is the input ABI used to generate the binding from.
const {{.Contract}}ABI = {{.ABI}}
{{- if .Deployments}}

// {{.Contract}}Deployments maps network names to the address the {{.Contract}} contract is deployed at.
var {{.Contract}}Deployments = map[string]common.Address{
{{- range $network, $address := .Deployments}}
	{{printf "%q" $network}}: common.HexToAddress("{{$address}}"),
{{- end}}
}
{{- end}}

// {{.Contract}} is a binding of the {{.Contract}} contract. Function accessors are promoted from its methods
// container.
type {{.Contract}} struct {
	{{.Contract}}Methods
}

// New{{.Contract}} creates a binding of the {{.Contract}} contract deployed at the given address.
func New{{.Contract}}(address common.Address, backend contract.Backend) (*{{.Contract}}, error) {
	instance, err := contract.NewInstance(address, {{.Contract}}ABI, backend)
	if err != nil {
		return nil, err
	}
	return &{{.Contract}}{ {{.Contract}}Methods: {{.Contract}}Methods{instance: instance} }, nil
}

// Address returns the address of the bound contract.
func (c *{{.Contract}}) Address() common.Address {
	return c.instance.Address()
}

// Instance returns the runtime instance the binding dispatches calls through.
func (c *{{.Contract}}) Instance() *contract.Instance {
	return c.instance
}
{{- if .Functions}}

// Methods returns the container of the contract's function accessors.
func (c *{{.Contract}}) Methods() *{{.Contract}}Methods {
	return &c.{{.Contract}}Methods
}

// Signatures returns the container of the contract's function signatures.
func (*{{.Contract}}) Signatures() {{.Contract}}Signatures {
	return {{.Contract}}Signatures{}
}
{{- end}}
{{- if .Fallback}}

// Fallback returns a call builder invoking the contract's fallback or receive function with raw call data.
func (c *{{.Contract}}) Fallback(data []byte) *contract.MethodBuilder[struct{}] {
	return c.instance.Fallback(data)
}
{{- end}}

// {{.Contract}}Methods is the container of the {{.Contract}} contract's function accessors.
type {{.Contract}}Methods struct {
	instance *contract.Instance
}
{{- range .Functions}}

{{.Accessor}}
{{- end}}

// {{.Contract}}Signatures is the container of the {{.Contract}} contract's function signatures.
type {{.Contract}}Signatures struct{}
{{- range .Functions}}

{{.SignatureAccessor}}
{{- end}}
`

var (
	// accessorTemplate renders a function's callable accessor.
	accessorTemplate = template.Must(template.New("accessor").Parse(templateAccessor))

	// signatureAccessorTemplate renders a function's signature accessor.
	signatureAccessorTemplate = template.Must(template.New("signatureAccessor").Parse(templateSignatureAccessor))

	// fileTemplate renders a complete binding file.
	fileTemplate = template.Must(template.New("file").Parse(templateFile))
)

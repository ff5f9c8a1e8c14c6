package figma

// VariableCollection is a group of variables in a Figma file, with one value
// set ("mode") selected as default.
type VariableCollection struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DefaultModeID string `json:"defaultModeId"`
}

// Variable is a single design variable as returned by the local variables endpoint.
// Values are keyed by mode ID and may be colors, numbers, strings or aliases,
// so they are kept untyped.
type Variable struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	ResolvedType         string         `json:"resolvedType"`
	VariableCollectionID string         `json:"variableCollectionId"`
	ValuesByMode         map[string]any `json:"valuesByMode"`
}

// VariablesResponse is the payload of GET /files/{key}/variables/local.
type VariablesResponse struct {
	Status int  `json:"status"`
	Error  bool `json:"error"`
	Meta   struct {
		VariableCollections map[string]VariableCollection `json:"variableCollections"`
		Variables           map[string]Variable           `json:"variables"`
	} `json:"meta"`
}

// imagesResponse is the payload of GET /images/{key}.
// Nodes Figma could not render map to null URLs.
type imagesResponse struct {
	Err    *string            `json:"err"`
	Images map[string]*string `json:"images"`
}

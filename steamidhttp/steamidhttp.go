package steamidhttp

type AccountType struct {
	Number         uint8  `json:"number" yaml:"number"`
	Name           string `json:"name" yaml:"name"`
	Letter         string `json:"letter,omitempty" yaml:"letter,omitempty"`
	Letters        string `json:"letters,omitempty" yaml:"letters,omitempty"`
	Usable         bool   `json:"usable" yaml:"usable"`
	URLPath        string `json:"url_path,omitempty" yaml:"url_path,omitempty"`
	SteamID64Ident uint64 `json:"steamid64_ident,string" yaml:"steamid64_ident"`
}

type AccountTypesResponse struct {
	Types []AccountType `json:"types" yaml:"types"`
}

type ConvertResponse struct {
	Input        string      `json:"input" yaml:"input"`
	Form         string      `json:"form,omitempty" yaml:"form,omitempty"`
	SteamID      string      `json:"steamid,omitempty" yaml:"steamid,omitempty"`
	SteamID3     string      `json:"steamid3,omitempty" yaml:"steamid3,omitempty"`
	SteamID64    string      `json:"steamid64,omitempty" yaml:"steamid64,omitempty"`
	Display      string      `json:"display,omitempty" yaml:"display,omitempty"`
	AccountID    uint32      `json:"account_id" yaml:"account_id"`
	Universe     uint8       `json:"universe" yaml:"universe"`
	UniverseName string      `json:"universe_name,omitempty" yaml:"universe_name,omitempty"`
	Instance     uint32      `json:"instance" yaml:"instance"`
	AccountType  AccountType `json:"account_type" yaml:"account_type"`
	URL          string      `json:"url,omitempty" yaml:"url,omitempty"`
	Error        string      `json:"error,omitempty" yaml:"error,omitempty"`
}

type ConvertBatchRequest struct {
	IDs []string `json:"ids"`
}

type ConvertBatchResponse struct {
	Results []ConvertResponse `json:"results" yaml:"results"`
}

type LookupResponse struct {
	SteamID64   string `json:"steamid64" yaml:"steamid64"`
	SteamID     string `json:"steamid" yaml:"steamid"`
	SteamID3    string `json:"steamid3" yaml:"steamid3"`
	AccountType uint8  `json:"account_type" yaml:"account_type"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Updated     int64  `json:"updated" yaml:"updated"`
}

package model

type Calendar struct {
	ID           int64
	DisplayName  string
	PrincipalURI string
	Timezone     string
}

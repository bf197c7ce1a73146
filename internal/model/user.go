package model

type User struct {
	UID          string
	PrincipalURI string
	DisplayName  string
	Email        string
	PushToken    string
	Notify       bool
}

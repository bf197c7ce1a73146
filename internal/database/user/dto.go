package user

import (
	"github.com/groupcal/reminder-service/internal/model"
)

type userDTO struct {
	UID          string
	Principaluri string
	Displayname  string
	Email        string
	PushToken    string
	Notify       bool
}

func mapToUser(dto *userDTO) *model.User {
	return &model.User{
		UID:          dto.UID,
		PrincipalURI: dto.Principaluri,
		DisplayName:  dto.Displayname,
		Email:        dto.Email,
		PushToken:    dto.PushToken,
		Notify:       dto.Notify,
	}
}

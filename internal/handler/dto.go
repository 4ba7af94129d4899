package handler

import (
	"greenbuilder/internal/intake"
	"greenbuilder/internal/models"
	"greenbuilder/internal/workflow"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Регистрация требует согласия с условиями, как и исходная форма
	AgreeTerms bool `json:"agreeTerms"`
}

type providerLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type sessionResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type setFieldRequest struct {
	Value string `json:"value"`
}

type adjustRoomRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type startNewDesignRequest struct {
	Confirmed bool `json:"confirmed"`
}

type selectConfigurationRequest struct {
	Index int `json:"index"`
}

type selectConfigurationResponse struct {
	ActiveIndex int `json:"activeIndex"`
}

// viewResponse is the display snapshot: either the intake form or the
// read-only result, never both.
type viewResponse struct {
	Mode        workflow.Mode       `json:"mode"`
	Creating    bool                `json:"creating"`
	Dirty       bool                `json:"dirty"`
	FormState   intake.State        `json:"formState"`
	Draft       *models.DesignDraft `json:"draft,omitempty"`
	Design      *models.Design      `json:"design,omitempty"`
	ActiveIndex int                 `json:"activeIndex"`
}

func toViewResponse(view workflow.View) viewResponse {
	return viewResponse{
		Mode:        view.Mode,
		Creating:    view.Creating,
		Dirty:       view.Dirty,
		FormState:   view.FormState,
		Draft:       view.Draft,
		Design:      view.Design,
		ActiveIndex: view.ActiveIndex,
	}
}

package client

import (
	"strings"

	"github.com/gastoscl/rendiciones/internal"
)

type RegisterClientDTO struct {
	RUT          string `json:"rut"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
}

func (dto RegisterClientDTO) Validate() error {
	if err := ValidateRUT(dto.RUT); err != nil {
		return err
	}
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if dto.ContactEmail != "" && !strings.Contains(dto.ContactEmail, "@") {
		return internal.NewValidationError("contact_email has invalid format", internal.ErrCodeValidationFailed)
	}
	return nil
}

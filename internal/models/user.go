package models

import (
	"strings"
	"time"

	"savoro_back_end/internal/apperr"
)

// Rôles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               string     `bson:"_id,omitempty" json:"user_id"`
	Name             string     `bson:"name" json:"name,omitempty"`
	Email            string     `bson:"email" json:"email"`
	Password         string     `bson:"password,omitempty" json:"-"`
	Role             string     `bson:"role" json:"role,omitempty"`
	Provider         string     `bson:"provider" json:"provider,omitempty"`
	ProviderID       string     `bson:"provider_id,omitempty" json:"-"`
	Address          string     `bson:"address,omitempty" json:"address,omitempty"`
	Phone            string     `bson:"phone,omitempty" json:"phone,omitempty"`
	ResetToken       string     `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpiry *time.Time `bson:"reset_token_expiry,omitempty" json:"-"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
}

// IsFederated : compte établi via un fournisseur d'identité externe.
// Invariant : un compte fédéré ne porte jamais de mot de passe utilisable,
// un compte local porte toujours un hash.
func (u *User) IsFederated() bool {
	return u.Provider != "" && u.Provider != "local"
}

// ResetTokenValid vérifie qu'un token de réinitialisation correspond à
// celui stocké sur le compte et qu'il n'est pas expiré.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if token == "" || u.ResetToken == "" || u.ResetToken != token {
		return false
	}
	return u.ResetTokenExpiry != nil && now.Before(*u.ResetTokenExpiry)
}

// Validate vérifie l'invariant local/fédéré avant persistance.
func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return apperr.Validation("email invalide")
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return apperr.Validation("rôle inconnu: " + u.Role)
	}
	if u.IsFederated() {
		if u.Password != "" {
			return apperr.Validation("un compte fédéré ne peut pas avoir de mot de passe")
		}
		if u.ProviderID == "" {
			return apperr.Validation("identifiant fournisseur requis pour un compte fédéré")
		}
	} else if u.Password == "" {
		return apperr.Validation("mot de passe requis pour un compte local")
	}
	return nil
}

package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Image        *string   `json:"pfp"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate describe un cambio parcial; los campos nil no se tocan.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Image        *string
}

// IsEmpty indica si no hay ningún campo que actualizar.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil && u.Image == nil
}

// PublicUser es la vista que se devuelve al cliente tras el login.
type PublicUser struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Pfp      *string `json:"pfp"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Pfp:      u.Image,
	}
}

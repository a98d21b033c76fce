package assets

import (
	_ "embed"
	"encoding/base64"
)

//go:embed defaultpfp.png
var defaultProfilePicture []byte

// DefaultProfilePicture devuelve la foto de perfil por defecto en base64.
func DefaultProfilePicture() string {
	return base64.StdEncoding.EncodeToString(defaultProfilePicture)
}

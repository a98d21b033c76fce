package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deepcrawler/internal/service"
)

// UserHandler mantiene dependencias para endpoints de autenticación y perfil.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

// SignUp maneja POST /auth/sing-up.
func (h *UserHandler) SignUp(c *gin.Context) {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "sign-up", err)
		return
	}

	_, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, h.logger, "sign-up", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Usuario creado correctamente",
	})
}

// Login maneja POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "login", err)
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	token, err := h.jwtServ.Issue(user)
	if err != nil {
		respondError(c, h.logger, "jwt issue", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Inicio de sesión correcto, ¡Bienvenido %s!", user.Username),
		"token":   token,
		"data":    user.Public(),
	})
}

// Logout maneja POST /auth/logout; requiere JWTAuthMiddleware.
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.jwtServ.Revoke(getAuthToken(c)); err != nil {
		respondError(c, h.logger, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me maneja GET /auth/me; requiere JWTAuthMiddleware.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, "me", service.ErrJWTInvalid)
		return
	}
	user, err := h.userServ.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user.Public()})
}

// UpdateProfile maneja PUT /api/users/:userId (multipart: username, email, password, pfp).
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, h.logger, "update profile", service.ErrInvalidInput)
		return
	}

	input := service.UpdateProfileInput{
		Username: optionalForm(c, "username"),
		Email:    optionalForm(c, "email"),
		Password: optionalForm(c, "password"),
	}

	image, contentType, err := readProfileImage(c)
	if err != nil {
		respondError(c, h.logger, "update profile", err)
		return
	}
	input.Image = image
	input.ImageContentType = contentType

	user, changed, err := h.userServ.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, h.logger, "update profile", err)
		return
	}

	message := "Perfil actualizado con éxito."
	if !changed {
		message = "No se encontraron cambios para actualizar."
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}

func optionalForm(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

// readProfileImage lee el archivo "pfp" si vino; nil sin error si no hay archivo.
func readProfileImage(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile("pfp")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("%w: %v", service.ErrInvalidImage, err)
	}
	if header.Size > service.MaxImageBytes {
		return nil, "", service.ErrInvalidImage
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Header.Get("Content-Type"), nil
}

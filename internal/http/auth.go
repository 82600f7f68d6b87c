package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tulisify/tulisify/internal/container"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

// AuthController exposes the auth use-cases. Tokens are stateless, so
// logout only acknowledges.
type AuthController struct {
	app *container.Container
}

func NewAuthController(app *container.Container) *AuthController {
	return &AuthController{app: app}
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type registerForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil && !isEmptyBody(err) {
		respondBadRequest(c, MsgInvalidBody)
		return
	}

	res := ac.app.Login.Execute(c.Request.Context(), entities.LoginRequest{
		Email:    form.Email,
		Password: form.Password,
	})
	respondResult(c, "login", res, http.StatusOK)
}

// Register handles POST /api/auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil && !isEmptyBody(err) {
		respondBadRequest(c, MsgInvalidBody)
		return
	}

	res := ac.app.Register.Execute(c.Request.Context(), entities.RegisterRequest{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	respondResult(c, "register", res, http.StatusCreated)
}

// Me handles GET /api/auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	res := ac.app.CurrentUser.Execute(c.Request.Context())
	if res.IsFailure() {
		respondFailure(c, "current_user", res)
		return
	}
	if res.Value() == nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondResult(c, "current_user", result.Success(*res.Value()), http.StatusOK)
}

// Logout handles POST /api/auth/logout.
func (ac *AuthController) Logout(c *gin.Context) {
	res := ac.app.Logout.Execute(c.Request.Context())
	if res.IsFailure() {
		respondFailure(c, "logout", res)
		return
	}
	respondResult(c, "logout", result.Success(MessageResponse{Message: "Logged out"}), http.StatusOK)
}

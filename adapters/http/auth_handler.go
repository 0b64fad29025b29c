package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authUC "github.com/khoahotran/portli/internal/application/usecase/auth"
	"github.com/khoahotran/portli/internal/domain/account"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

type AuthHandler struct {
	loginUseCase          *authUC.LoginUseCase
	registerUseCase       *authUC.RegisterUseCase
	verifyOTPUseCase      *authUC.VerifyOTPUseCase
	forgotPasswordUseCase *authUC.ForgotPasswordUseCase
	resetPasswordUseCase  *authUC.ResetPasswordUseCase
	logoutUseCase         *authUC.LogoutUseCase
	sessions              *session.Provider
	pages                 pages
	logger                logger.Logger
}

func NewAuthHandler(
	loginUC *authUC.LoginUseCase,
	registerUC *authUC.RegisterUseCase,
	verifyOTPUC *authUC.VerifyOTPUseCase,
	forgotUC *authUC.ForgotPasswordUseCase,
	resetUC *authUC.ResetPasswordUseCase,
	logoutUC *authUC.LogoutUseCase,
	sessions *session.Provider,
	log logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:          loginUC,
		registerUseCase:       registerUC,
		verifyOTPUseCase:      verifyOTPUC,
		forgotPasswordUseCase: forgotUC,
		resetPasswordUseCase:  resetUC,
		logoutUseCase:         logoutUC,
		sessions:              sessions,
		pages:                 pages{sessions: sessions, logger: log},
		logger:                log,
	}
}

// respond shows the interstitial for outcomes that navigate and re-renders
// the form otherwise.
func (h *AuthHandler) respond(c *gin.Context, out *authUC.Outcome, page, title string, form any) {
	if out.Redirects() {
		h.pages.render(c, http.StatusOK, "redirect", title, out, &out.Flash)
		return
	}
	h.pages.render(c, http.StatusOK, page, title, form, &out.Flash)
}

func (h *AuthHandler) bind(c *gin.Context, form any) bool {
	if err := c.ShouldBind(form); err != nil {
		c.Error(apperror.NewInvalidInput("invalid form data", err))
		return false
	}
	return true
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.pages.render(c, http.StatusOK, "login", "Login", account.LoginForm{}, nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form account.LoginForm
	if !h.bind(c, &form) {
		return
	}
	out, err := h.loginUseCase.Execute(c.Request.Context(), ClientID(c), form)
	if err != nil {
		c.Error(err)
		return
	}
	form.Password = ""
	h.respond(c, out, "login", "Login", form)
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.pages.render(c, http.StatusOK, "register", "Register", account.RegisterForm{}, nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form account.RegisterForm
	if !h.bind(c, &form) {
		return
	}
	out, err := h.registerUseCase.Execute(c.Request.Context(), ClientID(c), form)
	if err != nil {
		c.Error(err)
		return
	}
	form.Password = ""
	h.respond(c, out, "register", "Register", form)
}

func (h *AuthHandler) navState(c *gin.Context) session.NavState {
	nav, err := h.sessions.NavState(c.Request.Context(), ClientID(c))
	if err != nil {
		h.logger.Warn("Failed to read navigation state", zap.Error(err))
	}
	return nav
}

func (h *AuthHandler) VerifyOTPPage(c *gin.Context) {
	h.pages.render(c, http.StatusOK, "otp_verify", "Verify OTP", navStateView{Email: h.navState(c).Email}, nil)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var form account.VerifyOTPForm
	if !h.bind(c, &form) {
		return
	}
	out, err := h.verifyOTPUseCase.Execute(c.Request.Context(), ClientID(c), form)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, out, "otp_verify", "Verify OTP", navStateView{Email: h.navState(c).Email, OTP: form.OTP})
}

func (h *AuthHandler) ForgotPasswordPage(c *gin.Context) {
	h.pages.render(c, http.StatusOK, "forgot_password", "Forgot Password", account.ForgotPasswordForm{}, nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var form account.ForgotPasswordForm
	if !h.bind(c, &form) {
		return
	}
	out, err := h.forgotPasswordUseCase.Execute(c.Request.Context(), ClientID(c), form)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, out, "forgot_password", "Forgot Password", form)
}

func (h *AuthHandler) ResetPasswordPage(c *gin.Context) {
	h.pages.render(c, http.StatusOK, "reset_password", "Reset Password", navStateView{Email: h.navState(c).Email}, nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var form account.ResetPasswordForm
	if !h.bind(c, &form) {
		return
	}
	out, err := h.resetPasswordUseCase.Execute(c.Request.Context(), ClientID(c), form)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, out, "reset_password", "Reset Password", navStateView{Email: h.navState(c).Email, OTP: form.OTP})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.logoutUseCase.Execute(c.Request.Context(), ClientID(c)); err != nil {
		c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/service"
	"github.com/fittogether/server/pkg/log"
	"github.com/fittogether/server/pkg/middleware"
	"github.com/fittogether/server/pkg/response"
)

// Handler handles HTTP requests for the user and DM APIs.
type Handler struct {
	userService    service.UserService
	kakaoService   service.KakaoService
	dmService      service.DMService
	authMiddleware *middleware.AuthMiddleware
	signInLimit    gin.HandlerFunc
}

// NewHandler creates a new HTTP handler. signInLimit may be nil.
func NewHandler(
	userService service.UserService,
	kakaoService service.KakaoService,
	dmService service.DMService,
	authMiddleware *middleware.AuthMiddleware,
	signInLimit gin.HandlerFunc,
) *Handler {
	if signInLimit == nil {
		signInLimit = func(c *gin.Context) { c.Next() }
	}
	return &Handler{
		userService:    userService,
		kakaoService:   kakaoService,
		dmService:      dmService,
		authMiddleware: authMiddleware,
		signInLimit:    signInLimit,
	}
}

// NewEngine creates a gin engine that only honours X-Forwarded-For from trustedProxies.
// Client IPs key the sign-in rate limiter, so an empty list trusts no proxy.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	return r, nil
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	users := r.Group("/users")
	{
		users.POST("/signup", h.SignUp)
		users.GET("/signup/check/nickname", h.CheckNickname)
		users.GET("/signup/check/email", h.CheckEmail)
		users.POST("/signin", h.signInLimit, h.SignIn)
		users.GET("/signin/kakao", h.signInLimit, h.KakaoSignIn)
		users.GET("/signin/kakao/url", h.KakaoAuthURL)
	}

	dm := r.Group("/dm")
	{
		dm.POST("/rooms", h.authMiddleware.RequireAuth(), h.CreateRoom)
		dm.GET("/rooms", h.authMiddleware.RequireAuth(), h.ListRooms)
		dm.GET("/rooms/:chatRoomId/messages", h.authMiddleware.RequireAuth(), h.ListMessages)
		dm.POST("/messages", h.SendMessage)
	}
}

// SignUp handles email sign-up.
func (h *Handler) SignUp(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var form domain.SignUpForm
	if err := c.ShouldBindJSON(&form); err != nil {
		l.Warn().Err(err).Msg("invalid signup request")
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.SignUp(ctx, &form)
	if err != nil {
		h.respondError(c, err, "failed to sign up")
		return
	}

	response.Success(c, user)
}

// CheckNickname answers 200 when the nickname is free and 409 when it is taken.
func (h *Handler) CheckNickname(c *gin.Context) {
	nickname := c.Query("nickname")
	if nickname == "" {
		response.BadRequest(c, "nickname is required")
		return
	}

	exists, err := h.userService.IsExistNickname(c.Request.Context(), nickname)
	if err != nil {
		h.respondError(c, err, "failed to check nickname")
		return
	}
	if exists {
		response.Conflict(c, "nickname already exists")
		return
	}

	response.Success(c, gin.H{"available": true, "message": "nickname is available"})
}

// CheckEmail answers 200 when the email is free and 409 when it is taken.
func (h *Handler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email is required")
		return
	}

	exists, err := h.userService.IsExistEmail(c.Request.Context(), email)
	if err != nil {
		h.respondError(c, err, "failed to check email")
		return
	}
	if exists {
		response.Conflict(c, "email already exists")
		return
	}

	response.Success(c, gin.H{"available": true, "message": "email is available"})
}

// SignIn handles email/password sign-in.
func (h *Handler) SignIn(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var form domain.SignInForm
	if err := c.ShouldBindJSON(&form); err != nil {
		l.Warn().Err(err).Msg("invalid signin request")
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.userService.SignIn(ctx, &form)
	if err != nil {
		h.respondError(c, err, "failed to sign in")
		return
	}

	response.Success(c, token)
}

// KakaoSignIn completes the Kakao OAuth redirect.
func (h *Handler) KakaoSignIn(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "code is required")
		return
	}

	token, err := h.kakaoService.SignIn(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err, "failed to sign in with kakao")
		return
	}

	response.Success(c, token)
}

// KakaoAuthURL returns the Kakao consent page for the web client to open.
func (h *Handler) KakaoAuthURL(c *gin.Context) {
	response.Success(c, h.kakaoService.AuthURL(c.Request.Context()))
}

// respondError maps service errors to HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, "invalid or missing token")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, service.ErrChatRoomNotFound):
		response.NotFound(c, "chat room not found")
	case errors.Is(err, service.ErrNicknameExists):
		response.Conflict(c, "nickname already exists")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, "email already exists")
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrOAuthProvider):
		response.BadGateway(c, "kakao sign in failed")
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(fallback)
		response.InternalError(c, fallback)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/model"
)

// Auth error codes. Screens translate them with MessageFor.
const (
	CodeMissingFields     = "missing-fields"
	CodeInvalidEmail      = "invalid-email"
	CodePasswordTooShort  = "password-too-short"
	CodePasswordMismatch  = "password-mismatch"
	CodeEmailAlreadyInUse = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeTooManyRequests   = "too-many-requests"
	CodeNetworkFailed     = "network-request-failed"
)

const (
	OpLogin    = "login"
	OpRegister = "register"
)

// AuthError is a failed register or login attempt.
type AuthError struct {
	Op   string
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Code + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Code
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message returns the user-facing text for the error.
func (e *AuthError) Message() string {
	return MessageFor(e.Op, e.Code)
}

var authMessages = map[string]string{
	CodeInvalidEmail:      "Format email tidak valid",
	CodePasswordTooShort:  "Password minimal 6 karakter",
	CodePasswordMismatch:  "Password dan Konfirmasi Password tidak sama",
	CodeEmailAlreadyInUse: "Email sudah terdaftar",
	CodeWeakPassword:      "Password terlalu lemah",
	CodeUserNotFound:      "Akun tidak ditemukan",
	CodeWrongPassword:     "Password salah",
	CodeTooManyRequests:   "Terlalu banyak percobaan. Coba lagi nanti",
	CodeNetworkFailed:     "Koneksi internet bermasalah",
}

// MessageFor maps an error code to the message shown for the given
// operation. Unknown codes fall back to the operation's generic failure.
func MessageFor(op, code string) string {
	if code == CodeMissingFields {
		if op == OpLogin {
			return "Email dan Password harus diisi"
		}
		return "Semua field harus diisi"
	}
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	if op == OpRegister {
		return "Gagal membuat akun"
	}
	return "Password dan Email tidak cocok"
}

// UserStore is the account storage used by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type registerForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

type loginForm struct {
	Email string `validate:"required,email"`
}

// AuthService registers accounts and checks credentials.
type AuthService struct {
	users    UserStore
	validate *validator.Validate
	log      *logger.Logger

	perMinute int
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewAuthService allows loginsPerMinute attempts per email. Zero or less
// disables throttling.
func NewAuthService(users UserStore, loginsPerMinute int, log *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		validate:  validator.New(),
		log:       log.WithComponent("auth"),
		perMinute: loginsPerMinute,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Register creates an account. On success the caller moves the user to the
// login dialog; registering does not sign in.
func (s *AuthService) Register(ctx context.Context, email, password, confirm string) (*model.User, error) {
	user, err := s.register(ctx, email, password, confirm)
	s.record(OpRegister, err)
	return user, err
}

func (s *AuthService) register(ctx context.Context, email, password, confirm string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(confirm) == "" {
		return nil, &AuthError{Op: OpRegister, Code: CodeMissingFields}
	}
	if err := s.validate.Struct(registerForm{Email: email, Password: password, Confirm: confirm}); err != nil {
		return nil, &AuthError{Op: OpRegister, Code: registerCode(err), Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &AuthError{Op: OpRegister, Code: CodeWeakPassword, Err: err}
	}

	user := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, &AuthError{Op: OpRegister, Code: CodeEmailAlreadyInUse, Err: err}
		}
		return nil, &AuthError{Op: OpRegister, Code: CodeNetworkFailed, Err: err}
	}
	s.log.LogUserAction(user.ID, "register", nil)
	return user, nil
}

// Login checks the credentials and returns the account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.login(ctx, email, password)
	s.record(OpLogin, err)
	return user, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, &AuthError{Op: OpLogin, Code: CodeMissingFields}
	}
	if !s.allow(email) {
		return nil, &AuthError{Op: OpLogin, Code: CodeTooManyRequests}
	}
	if err := s.validate.Struct(loginForm{Email: email}); err != nil {
		return nil, &AuthError{Op: OpLogin, Code: CodeInvalidEmail, Err: err}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, &AuthError{Op: OpLogin, Code: CodeUserNotFound, Err: err}
		}
		return nil, &AuthError{Op: OpLogin, Code: CodeNetworkFailed, Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &AuthError{Op: OpLogin, Code: CodeWrongPassword, Err: err}
	}
	s.log.LogUserAction(user.ID, "login", nil)
	return user, nil
}

func (s *AuthService) allow(email string) bool {
	if s.perMinute <= 0 {
		return true
	}
	key := strings.ToLower(email)

	s.mu.Lock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)
		s.limiters[key] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow()
}

func (s *AuthService) record(op string, err error) {
	status := "success"
	if err != nil {
		status = CodeNetworkFailed
		var authErr *AuthError
		if errors.As(err, &authErr) {
			status = authErr.Code
		}
		s.log.Debugw("auth attempt failed", "op", op, "code", status)
	}
	metrics.AuthAttempts.WithLabelValues(op, status).Inc()
}

// registerCode picks the first failing rule in the order the form is read:
// email, then password length, then confirmation.
func registerCode(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return CodeNetworkFailed
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = true
	}
	switch {
	case failed["Email"]:
		return CodeInvalidEmail
	case failed["Password"]:
		return CodePasswordTooShort
	default:
		return CodePasswordMismatch
	}
}

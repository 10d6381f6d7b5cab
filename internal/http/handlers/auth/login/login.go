// Package login реализует HTTP-обработчик входа пользователей.
//
// Поддерживаются два способа: пароль и внешний id-токен. Для обоих способов
// при неудаче возвращается одно и то же сообщение об ошибке, детали причин
// остаются только в логах сервера.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/services/auth"
)

// Request — структура входных данных для входа. Либо пара username/password,
// либо id_token стороннего провайдера.
type Request struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Password string `json:"password" validate:"omitempty,min=6"`
	IDToken  string `json:"id_token" validate:"omitempty"`
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	LoginWithPassword(ctx context.Context, username, password string) (*auth.TokenPair, error)
	LoginWithIDToken(ctx context.Context, idToken string) (*auth.TokenPair, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Аутентифицирует пользователя по паролю или внешнему id-токену. Возвращает JWT и refresh-токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	var pair *auth.TokenPair
	var err error
	switch {
	case req.IDToken != "":
		pair, err = h.service.LoginWithIDToken(r.Context(), req.IDToken)
	case req.Username != "" && req.Password != "":
		pair, err = h.service.LoginWithPassword(r.Context(), req.Username, req.Password)
	default:
		log.Error("neither credentials nor id token provided")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error("login rejected", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(auth.ErrInvalidCredentials.Error()))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not login"))
		return
	}

	log.Info("user logged in", slog.String("user_uid", pair.UserUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user_uid":      pair.UserUID,
		"username":      pair.Username,
	}))
}

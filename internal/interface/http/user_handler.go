package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-identity/internal/application"
	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
	"github.com/oksasatya/go-user-identity/pkg/helpers"
	"github.com/oksasatya/go-user-identity/pkg/response"
	"github.com/oksasatya/go-user-identity/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &UserHandler{Svc: svc, Logger: logger}
}

type addressRequest struct {
	Street     *string `json:"rua" binding:"omitempty,max=255"`
	Number     *int64  `json:"numero" binding:"omitempty,gte=0"`
	Complement *string `json:"complemento" binding:"omitempty,max=10"`
	City       *string `json:"cidade" binding:"omitempty,max=150"`
	State      *string `json:"estado" binding:"omitempty,uf"`
	PostalCode *string `json:"cep" binding:"omitempty,cep"`
}

func (r addressRequest) patch() entity.AddressPatch {
	return entity.AddressPatch{
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
	}
}

type phoneRequest struct {
	Number   *string `json:"numero" binding:"omitempty,fone"`
	AreaCode *string `json:"ddd" binding:"omitempty,ddd"`
}

func (r phoneRequest) patch() entity.PhonePatch {
	return entity.PhonePatch{Number: r.Number, AreaCode: r.AreaCode}
}

type registerRequest struct {
	Name      string           `json:"nome" binding:"max=100"`
	Email     string           `json:"email" binding:"required,email,max=100"`
	Password  string           `json:"senha" binding:"required"`
	Addresses []addressRequest `json:"enderecos" binding:"omitempty,dive"`
	Phones    []phoneRequest   `json:"telefones" binding:"omitempty,dive"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"senha" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"nome" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Password *string `json:"senha" binding:"omitempty,min=1"`
}

type addressResponse struct {
	ID         int64  `json:"id"`
	Street     string `json:"rua"`
	Number     int64  `json:"numero"`
	Complement string `json:"complemento"`
	City       string `json:"cidade"`
	State      string `json:"estado"`
	PostalCode string `json:"cep"`
}

type phoneResponse struct {
	ID       int64  `json:"id"`
	Number   string `json:"numero"`
	AreaCode string `json:"ddd"`
}

// userResponse is the outward projection of a user. It has no password
// field at all.
type userResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"nome"`
	Email     string            `json:"email"`
	Addresses []addressResponse `json:"enderecos"`
	Phones    []phoneResponse   `json:"telefones"`
}

func toAddressResponse(a entity.Address) addressResponse {
	return addressResponse{
		ID:         a.ID,
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
	}
}

func toPhoneResponse(p entity.Phone) phoneResponse {
	return phoneResponse{ID: p.ID, Number: p.Number, AreaCode: p.AreaCode}
}

func toUserResponse(u *entity.User) userResponse {
	out := userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Addresses: make([]addressResponse, 0, len(u.Addresses)),
		Phones:    make([]phoneResponse, 0, len(u.Phones)),
	}
	for _, a := range u.Addresses {
		out.Addresses = append(out.Addresses, toAddressResponse(a))
	}
	for _, p := range u.Phones {
		out.Phones = append(out.Phones, toPhoneResponse(p))
	}
	return out
}

// writeError maps error kinds to status codes. Anything unrecognised is a
// 500 and is logged; its text is not sent to the client.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	var status int
	var message string
	switch {
	case domerrors.IsConflict(err):
		status, message = http.StatusConflict, "email already registered"
	case domerrors.IsNotFound(err):
		status, message = http.StatusNotFound, "not found"
	case domerrors.IsInvalidToken(err):
		status, message = http.StatusUnauthorized, "invalid token"
	case domerrors.IsUnauthorized(err):
		status, message = http.StatusUnauthorized, "unauthorized"
	case domerrors.IsForbidden(err):
		status, message = http.StatusForbidden, "forbidden"
	case domerrors.IsInvalidInput(err):
		status, message = http.StatusBadRequest, "invalid input"
	default:
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Error[any](c, status, message, err.Error())
}

func (h *UserHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

func queryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid id", map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}
	in := entity.NewUser{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Addresses: make([]entity.AddressPatch, 0, len(req.Addresses)),
		Phones:    make([]entity.PhonePatch, 0, len(req.Phones)),
	}
	for _, a := range req.Addresses {
		in.Addresses = append(in.Addresses, a.patch())
	}
	for _, p := range req.Phones {
		in.Phones = append(in.Phones, p.patch())
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u), "user registered", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	s, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": helpers.BearerPrefix + s.Token}, "login successful", gin.H{"expires_at": s.ExpiresAt})
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"email": "is required"})
		return
	}
	u, err := h.Svc.FetchByEmail(c.Request.Context(), email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}

func (h *UserHandler) DeleteByEmail(c *gin.Context) {
	if err := h.Svc.DeleteByEmail(c.Request.Context(), c.Param("email")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateUserRequest
	if !h.bind(c, &req) {
		return
	}
	patch := entity.UserPatch{Name: req.Name, Email: req.Email, Password: req.Password}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetHeader("Authorization"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

func (h *UserHandler) AddAddress(c *gin.Context) {
	var req addressRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.Svc.AddAddress(c.Request.Context(), c.GetHeader("Authorization"), req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toAddressResponse(*a), "address created", nil)
}

func (h *UserHandler) UpdateAddress(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var req addressRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.Svc.UpdateAddress(c.Request.Context(), c.GetHeader("Authorization"), id, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAddressResponse(*a), "address updated", nil)
}

func (h *UserHandler) AddPhone(c *gin.Context) {
	var req phoneRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.Svc.AddPhone(c.Request.Context(), c.GetHeader("Authorization"), req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toPhoneResponse(*p), "phone created", nil)
}

func (h *UserHandler) UpdatePhone(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var req phoneRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.Svc.UpdatePhone(c.Request.Context(), c.GetHeader("Authorization"), id, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPhoneResponse(*p), "phone updated", nil)
}

func (h *UserHandler) LookupPostalCode(c *gin.Context) {
	addr, err := h.Svc.LookupPostalCode(c.Request.Context(), c.Param("cep"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"cep":         addr.PostalCode,
		"logradouro":  addr.Street,
		"complemento": addr.Complement,
		"bairro":      addr.Neighborhood,
		"localidade":  addr.City,
		"uf":          addr.State,
	}, "postal code", nil)
}

// Search queries the user directory; size defaults to 10 and is capped at 50.
func (h *UserHandler) Search(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid size", map[string]string{"size": "must be an integer"})
		return
	}
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"id": u.ID, "nome": u.Name, "email": u.Email})
	}
	response.Success(c, http.StatusOK, out, "search results", gin.H{"count": len(out)})
}

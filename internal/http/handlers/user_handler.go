// README: User registration and lookup.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/modules/account"
	"ridebooking/internal/types"
)

type UserHandler struct {
	users account.Store
}

func NewUserHandler(users account.Store) *UserHandler {
	return &UserHandler{users: users}
}

type registerUserReq struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.FullName == "" {
		writeError(c, http.StatusBadRequest, "username and full_name are required")
		return
	}
	if _, err := h.users.GetByUsername(c.Request.Context(), req.Username); err == nil {
		writeError(c, http.StatusConflict, "username already registered")
		return
	}
	u := &account.User{
		Username:    req.Username,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}
	u.ID = types.NewID()
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

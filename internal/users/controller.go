package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stagepass/internal/shared/apperrors"
	"stagepass/internal/shared/utils/response"
)

type Controller interface {
	CreateUser(c *gin.Context)
	GetUser(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.NewValidation("invalid request: %v", err))
		return
	}

	user, err := ctrl.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, http.StatusCreated, "User created successfully", user)
}

func (ctrl *controller) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, apperrors.NewValidation("invalid user id"))
		return
	}

	user, err := ctrl.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, http.StatusOK, "User retrieved successfully", user.ToResponse())
}

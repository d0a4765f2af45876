package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-profile-service/internal/usecase/user"
	pkgerrors "user-profile-service/pkg/errors"
	"user-profile-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	log.Info("gin CreateUser request", zap.String("firebase_uid", req.FirebaseUID), zap.String("email", req.Email))

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		FirebaseUID:    req.FirebaseUID,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           req.Role,
		Group:          req.Group,
		OptionalFields: req.ProfileFields.toUsecase(),
	})
	if err != nil {
		log.Warn("gin CreateUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(resp.User))
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// GetUserByFirebaseUID handles GET /v1/users/firebase/:uid
func (h *UserHandler) GetUserByFirebaseUID(c *gin.Context) {
	resp, err := h.uc.GetUserByFirebaseUID(c.Request.Context(), user.GetUserByFirebaseUIDRequest{
		FirebaseUID: c.Param("uid"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// UpdateUser handles PATCH /v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := logger.WithContext(c.Request.Context(), h.log)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	log.Info("gin UpdateUser request", zap.Int64("id", id))

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:             id,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           req.Role,
		Group:          req.Group,
		OptionalFields: req.ProfileFields.toUsecase(),
	})
	if err != nil {
		log.Warn("gin UpdateUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// DeleteUser handles DELETE /v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("gin DeleteUser request", zap.Int64("id", id))

	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id": resp.ID,
	})
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	// Malformed numbers fall back to the usecase defaults.
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: c.Query("query"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	})
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warn("invalid user id", zap.String("id", idStr))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a positive number",
		})
		return 0, false
	}
	return id, true
}

// handleError converts usecase errors to HTTP responses by error type
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var (
		validationErr *pkgerrors.ValidationError
		notFoundErr   *pkgerrors.NotFoundError
		existsErr     *pkgerrors.AlreadyExistsError
		constraintErr *pkgerrors.ConstraintError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
	case errors.As(err, &existsErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_exists",
			Message: existsErr.Error(),
		})
	case errors.As(err, &constraintErr) && constraintErr.Kind == pkgerrors.UniqueViolation:
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_exists",
			Message: constraintErr.Error(),
			Field:   constraintErr.Column,
		})
	case errors.As(err, &constraintErr) && constraintErr.Kind == pkgerrors.NotNullViolation:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: constraintErr.Error(),
			Field:   constraintErr.Column,
		})
	default:
		logger.WithContext(c.Request.Context(), h.log).Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

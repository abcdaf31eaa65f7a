package analysis

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"skillgap-backend/internal/profiles"
	"skillgap-backend/internal/shared/server/respond"
	"skillgap-backend/internal/shared/util"
)

// maxUploadBytes bounds inline CV uploads.
const maxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.startAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/profiles/:employeeId", h.getProfile)
}

type startRequest struct {
	EmployeeID string `json:"employeeId"`
	FilePath   string `json:"filePath"`
	Source     string `json:"source"`
	MimeType   string `json:"mimeType"`
	FileName   string `json:"fileName"`
}

// startAnalysis accepts either a JSON body referencing an already-stored
// document or a multipart upload that is saved to the object store first.
func (h *Handler) startAnalysis(c *gin.Context) {
	in, ok := h.buildStartInput(c)
	if !ok {
		return
	}
	c.Set("employeeId", in.EmployeeID)

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	req, created, err := h.Svc.Start(ctx, in)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "required"):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to start analysis", nil)
		}
		return
	}
	c.Set("analysisId", req.ID)

	status := http.StatusAccepted
	if !created {
		// Existing in-flight request; point the caller at it.
		status = http.StatusOK
	}
	respond.JSON(c, status, gin.H{
		"analysisId": req.ID,
		"status":     req.Status,
		"createdAt":  req.CreatedAt,
	})
}

func (h *Handler) buildStartInput(c *gin.Context) (StartInput, bool) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		return h.startInputFromUpload(c)
	}

	var body startRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return StartInput{}, false
	}
	if strings.TrimSpace(body.EmployeeID) == "" || strings.TrimSpace(body.FilePath) == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "employeeId and filePath are required", nil)
		return StartInput{}, false
	}
	return StartInput{
		EmployeeID: body.EmployeeID,
		FilePath:   body.FilePath,
		Source:     body.Source,
		MimeType:   body.MimeType,
		FileName:   body.FileName,
	}, true
}

func (h *Handler) startInputFromUpload(c *gin.Context) (StartInput, bool) {
	employeeID := strings.TrimSpace(c.PostForm("employeeId"))
	if employeeID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "employeeId is required", nil)
		return StartInput{}, false
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", nil)
		return StartInput{}, false
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, "file exceeds the 10MB limit", nil)
		return StartInput{}, false
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid file name", nil)
		return StartInput{}, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to read upload", nil)
		return StartInput{}, false
	}
	defer f.Close()

	key, _, mimeType, err := h.Svc.Store.Save(c.Request.Context(), employeeID, fileName, f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to store document", nil)
		return StartInput{}, false
	}

	return StartInput{
		EmployeeID: employeeID,
		FilePath:   key,
		Source:     c.PostForm("source"),
		MimeType:   mimeType,
		FileName:   fileName,
	}, true
}

func (h *Handler) getAnalysis(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "analysis id is required", nil)
		return
	}

	req, err := h.Svc.Get(c.Request.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch analysis", nil)
		}
		return
	}

	resp := gin.H{
		"id":         req.ID,
		"employeeId": req.EmployeeID,
		"status":     req.Status,
		"createdAt":  req.CreatedAt,
		"updatedAt":  req.UpdatedAt,
	}
	if req.StartedAt != nil {
		resp["startedAt"] = req.StartedAt
	}
	if req.CompletedAt != nil {
		resp["completedAt"] = req.CompletedAt
	}
	if req.Status == StatusFailed {
		resp["errorCode"] = req.ErrorCode
		resp["errorMessage"] = req.ErrorMessage
	}
	respond.OK(c, resp)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Query("employeeId"))
	if employeeID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "employeeId query parameter is required", nil)
		return
	}

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), employeeID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list analyses", nil)
		return
	}
	if items == nil {
		items = []Request{}
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) getProfile(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if employeeID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "employee id is required", nil)
		return
	}

	profile, err := h.Svc.Profile(c.Request.Context(), employeeID)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no skills profile for employee", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch profile", nil)
		}
		return
	}
	respond.OK(c, profileResponse{
		Profile:      profile,
		LegacySkills: profile.LegacySkills(),
	})
}

// profileResponse extends the stored profile with the legacy-scale skill
// representation the wider platform consumes.
type profileResponse struct {
	profiles.Profile
	LegacySkills []profiles.LegacySkill `json:"legacySkills"`
}

package api

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/healthrisk/internal/report"
	"github.com/Skufu/healthrisk/internal/risk"
)

type handler struct {
	engine   *risk.Engine
	renderer report.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

type predictResponse struct {
	risk.Assessment
	ReportAvailable bool `json:"reportAvailable"`
}

func (h *handler) predict(newReq func() assessmentRequest) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := newReq()
		a, ok := h.assess(c, req)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, predictResponse{Assessment: a, ReportAvailable: h.renderer != nil})
	}
}

func (h *handler) downloadReport(newReq func() assessmentRequest) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := newReq()
		a, ok := h.assess(c, req)
		if !ok {
			return
		}
		if h.renderer == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report_unavailable"})
			return
		}

		doc := report.Report{
			ID:          uuid.NewString(),
			Disease:     a.Disease.Name(),
			PatientName: req.patient(),
			Inputs:      a.Inputs,
			Prediction:  a.Verdict,
			RiskPercent: a.RiskPercent,
			GeneratedAt: h.now(),
		}
		pdf, err := h.renderer.Render(doc)
		if err != nil || len(pdf) == 0 {
			h.logger.Warn("report rendering failed",
				zap.String("disease", string(a.Disease)),
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "report_unavailable"})
			return
		}

		filename := report.Filename(doc.Disease, doc.PatientName)
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

// assess binds and scores a request, writing the error response itself when
// it returns false.
func (h *handler) assess(c *gin.Context, req assessmentRequest) (risk.Assessment, bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"details": describeValidation(verrs),
			})
			return risk.Assessment{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return risk.Assessment{}, false
	}

	a, err := req.run(h.engine)
	if err != nil {
		// Artifacts disagree with the feature builders; nothing the caller
		// can fix.
		h.logger.Error("prediction failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction_failed"})
		return risk.Assessment{}, false
	}
	return a, true
}

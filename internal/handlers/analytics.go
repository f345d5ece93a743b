package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (ah *AnalyticsHandler) Overview(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	RespondOK(c, gin.H{
		"metrics":     ah.analytics.OverallMetrics(ctx, user.ID),
		"categories":  ah.analytics.CategoryPerformance(),
		"usage":       ah.analytics.UsagePatterns(),
		"experiments": ah.analytics.ExperimentAnalytics(ctx, user.ID),
	})
}

func (ah *AnalyticsHandler) Trends(c *gin.Context) {
	RespondOK(c, ah.analytics.PerformanceTrends(c.DefaultQuery("period", "30d")))
}

func (ah *AnalyticsHandler) Comparisons(c *gin.Context) {
	user := currentUser(c)
	RespondOK(c, ah.analytics.ModelComparison(c.Request.Context(), user.ID))
}

func (ah *AnalyticsHandler) Export(c *gin.Context) {
	user := currentUser(c)
	format := c.DefaultQuery("format", "json")

	payload, err := ah.analytics.Export(c.Request.Context(), user.ID, format)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if format == "csv" {
		c.Header("Content-Disposition", `attachment; filename="analytics.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(payload))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analytics.json"`)
	c.Data(http.StatusOK, "application/json", []byte(payload))
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/agent"
	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services"
	"github.com/arcwardens/outreach-backend/internal/services/excel"
	"github.com/arcwardens/outreach-backend/internal/tools"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	campaignAgent   *agent.Agent
	repliesExecutor *tools.RepliesExecutor
	excelService    *excel.Service
}

func NewCampaignHandler(
	campaignService *services.CampaignService,
	campaignAgent *agent.Agent,
	repliesExecutor *tools.RepliesExecutor,
	excelService *excel.Service,
) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		campaignAgent:   campaignAgent,
		repliesExecutor: repliesExecutor,
		excelService:    excelService,
	}
}

// Chat godoc
// @Summary Run one campaign agent turn
// @Description Processes a user message through the tool-calling agent; a paid tool defers into a pending action
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChatRequest true "Chat turn"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaign/chat [post]
func (h *CampaignHandler) Chat(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	token := c.GetString("delegated_token")

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	resp, err := h.campaignAgent.Chat(c.Request.Context(), userID, token, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Pay godoc
// @Summary Confirm payment and execute the pending action
// @Description Consumes the campaign's pending action, executes the deferred tool, and continues the agent loop
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PayRequest true "Payment confirmation"
// @Success 200 {object} models.PayResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaign/pay [post]
func (h *CampaignHandler) Pay(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	token := c.GetString("delegated_token")

	var req models.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	resp, err := h.campaignAgent.Resume(c.Request.Context(), userID, token, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create or rename a campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Campaign creation request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/campaign/create [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	campaign, err := h.campaignService.CreateOrRename(userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("Campaign %s created successfully", campaign.ID),
		"campaignId": campaign.ID,
		"name":       campaign.Name,
	})
}

// Update godoc
// @Summary Partially update a campaign
// @Description Applies only the provided fields; omitted fields are untouched
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateCampaignRequest true "Campaign update request"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaign/update [put]
func (h *CampaignHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	if err := h.campaignService.Update(userID, &req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Campaign %s updated successfully", req.CampaignID),
	})
}

// Delete godoc
// @Summary Delete a campaign and its analytics
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param campaignId query string true "Campaign ID to delete"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaign/delete [delete]
func (h *CampaignHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	campaignID := c.Query("campaignId")
	if campaignID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "campaignId parameter required"})
		return
	}

	if err := h.campaignService.Delete(userID, campaignID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Campaign %s deleted successfully", campaignID),
	})
}

// List godoc
// @Summary List the caller's campaigns
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	campaigns, err := h.campaignService.List(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"campaigns": campaigns,
	})
}

// Analytics godoc
// @Summary Get a campaign with its analytics counters
// @Description Executed campaigns without recorded counters get deterministic placeholder numbers flagged placeholder:true
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaigns/{id}/analytics [get]
func (h *CampaignHandler) Analytics(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	campaign, data, err := h.campaignService.Analytics(userID, campaignID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"campaign":  campaign,
		"analytics": data,
	})
}

// VerifyStatus godoc
// @Summary Scan the mailbox for campaign replies
// @Description Records new replies from known campaign senders and returns the full reply list
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.VerifyStatusResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaigns/{id}/verify_status [post]
func (h *CampaignHandler) VerifyStatus(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	token := c.GetString("delegated_token")
	campaignID := c.Param("id")

	if _, err := h.campaignService.Get(userID, campaignID); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.repliesExecutor.Execute(c.Request.Context(), tools.Invocation{
		UserID:     userID,
		CampaignID: campaignID,
		Token:      token,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	responses, err := h.campaignService.Replies(userID, campaignID)
	if err != nil {
		writeError(c, err)
		return
	}

	found := 0
	if n, ok := result["new_replies"].(int); ok {
		found = n
	}

	c.JSON(http.StatusOK, models.VerifyStatusResponse{
		Success:      true,
		RepliesFound: found,
		Responses:    responses,
	})
}

// ExportContacts godoc
// @Summary Download the campaign's contact list as xlsx
// @Tags campaigns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /api/campaigns/{id}/contacts/export [get]
func (h *CampaignHandler) ExportContacts(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	campaign, err := h.campaignService.Get(userID, campaignID)
	if err != nil {
		writeError(c, err)
		return
	}

	file, filename, err := h.excelService.ExportContacts(campaign)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		logrus.Errorf("Failed to stream contact export for campaign %s: %v", campaignID, err)
	}
}

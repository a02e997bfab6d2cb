package leads

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// calculateDiscountedPrice applies a flat or percentage discount, clamped at
// zero. The bulk import path never calls this; imported rows keep the stored
// default.
func calculateDiscountedPrice(quotedPrice, discountAmount float64, discountType string) float64 {
	if discountAmount <= 0 {
		return quotedPrice
	}

	finalPrice := quotedPrice - discountAmount
	if discountType == "percentage" {
		finalPrice = quotedPrice - quotedPrice*discountAmount/100
	}

	if finalPrice < 0 {
		return 0
	}
	return finalPrice
}

// processReferral normalizes the referral triple from request fields. Anything
// inconsistent (an "existing" referral without a client id, an "other" one
// without a name) collapses to empty values.
func processReferral(referredByType, clientID, clientName, otherName string) (string, string, string) {
	switch {
	case referredByType == "existing" && clientID != "":
		return "existing", clientName, clientID
	case referredByType == "other" && otherName != "":
		return "other", otherName, ""
	case referredByType == "fresh":
		return "fresh", "", ""
	}
	return "", "", ""
}

// notifyAssignment records a notification for the user whose full name matches
// the assigned team member. Name resolution takes the first match; a failure
// here never fails the lead write.
func notifyAssignment(leadID, assignTeamMember string) {
	if assignTeamMember == "" {
		return
	}

	var user models.User
	if err := utils.CRMDB.Where("full_name = ?", assignTeamMember).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to resolve assigned user %q: %v", assignTeamMember, err)
		}
		return
	}

	notification := models.Notification{
		LeadID:   leadID,
		UserID:   user.ID,
		IsViewed: false,
	}
	if err := utils.CRMDB.Create(&notification).Error; err != nil {
		log.Printf("Failed to create notification for lead %s: %v", leadID, err)
	}
}

func ListLeads(c *gin.Context) {
	var leadList []models.Lead
	if err := utils.CRMDB.Order("created_at DESC").Find(&leadList).Error; err != nil {
		log.Printf("List leads error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": len(leadList), "leads": leadList})
}

func GetLead(c *gin.Context) {
	var lead models.Lead
	if err := utils.CRMDB.First(&lead, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	// Clients this lead has referred, trimmed to summary fields
	type referredClient struct {
		ID                string  `json:"id"`
		ClientName        string  `json:"clientName"`
		ClientCompanyName string  `json:"clientCompanyName"`
		QuotedPrice       float64 `json:"quotedPrice"`
		DiscountedPrice   float64 `json:"discountedPrice"`
	}
	var referredClients []referredClient
	if err := utils.CRMDB.Model(&models.Lead{}).
		Where("referred_by_client_id = ?", lead.ID).
		Find(&referredClients).Error; err != nil {
		log.Printf("Get lead error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead, "referredClients": referredClients})
}

// Required form fields on single create. Bulk import has its own, larger list:
// here downloadStatus and paymentStatus may be omitted and take their column
// defaults.
var createRequiredFields = []string{
	"employeeName",
	"source",
	"leadCreatedAt",
	"stage",
	"clientName",
	"clientCompanyName",
	"productName",
	"assignTeamMember",
	"email",
	"phone",
	"orderId",
	"orderDate",
	"clientAddress",
	"clientKycId",
	"kycPin",
	"processedBy",
	"processedAt",
	"quotedPrice",
	"companyNameAddress",
	"billingSentStatus",
}

var leadFileFields = []string{"aadhaarPdf", "panPdf", "optionalPdf", "clientImage", "billDoc"}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if files := form.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

func CreateLead(c *gin.Context) {
	orderID := c.PostForm("orderId")

	var existing models.Lead
	if err := utils.CRMDB.Where("order_id = ?", orderID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Duplicate order ID: " + orderID + ". A lead with this order ID already exists.",
		})
		return
	}

	for _, field := range createRequiredFields {
		if !fieldPresent(c.PostForm(field)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Field '" + field + "' is required"})
			return
		}
	}

	form, _ := c.MultipartForm()

	referredByType, referredBy, referredByClientID := processReferral(
		c.PostForm("referredByType"),
		c.PostForm("referredByClientId"),
		c.PostForm("referredByClientName"),
		c.PostForm("referredByOtherName"),
	)

	quotedPrice, _ := strconv.ParseFloat(c.PostForm("quotedPrice"), 64)
	discountAmount, _ := strconv.ParseFloat(c.PostForm("discountAmount"), 64)
	discountType := c.PostForm("discountType")
	if discountType == "" {
		discountType = "amount"
	}

	lead := models.Lead{
		EmployeeName:      c.PostForm("employeeName"),
		Source:            c.PostForm("source"),
		OtherSource:       c.PostForm("otherSource"),
		LeadCreatedAt:     c.PostForm("leadCreatedAt"),
		ExpectedCloseDate: c.PostForm("expectedCloseDate"),
		LastContactedAt:   c.PostForm("lastContactedAt"),
		Stage:             c.PostForm("stage"),
		Comment:           c.PostForm("comment"),
		Remarks:           c.PostForm("remarks"),

		ClientName:        c.PostForm("clientName"),
		ClientCompanyName: c.PostForm("clientCompanyName"),
		ProductName:       c.PostForm("productName"),
		AssignTeamMember:  c.PostForm("assignTeamMember"),
		Email:             c.PostForm("email"),
		Phone:             c.PostForm("phone"),
		OrderID:           orderID,
		OrderDate:         c.PostForm("orderDate"),
		ClientAddress:     c.PostForm("clientAddress"),
		ClientKycID:       c.PostForm("clientKycId"),
		KycPin:            c.PostForm("kycPin"),
		DownloadStatus:    c.DefaultPostForm("downloadStatus", "process"),
		ProcessedBy:       c.PostForm("processedBy"),
		ProcessedAt:       c.PostForm("processedAt"),

		ReferredByType:     referredByType,
		ReferredBy:         referredBy,
		ReferredByClientID: referredByClientID,

		QuotedPrice:        quotedPrice,
		CompanyName:        c.PostForm("companyName"),
		CompanyNameAddress: c.PostForm("companyNameAddress"),
		PaymentStatus:      c.DefaultPostForm("paymentStatus", "pending"),
		PaymentStatusNote:  c.PostForm("paymentStatusNote"),
		InvoiceNumber:      c.PostForm("invoiceNumber"),
		InvoiceDate:        c.PostForm("invoiceDate"),
		BillingSentStatus:  c.DefaultPostForm("billingSentStatus", "not_sent"),
		BillingDate:        c.PostForm("billingDate"),
		DiscountAmount:     discountAmount,
		DiscountType:       discountType,
		DiscountedPrice:    calculateDiscountedPrice(quotedPrice, discountAmount, discountType),
		AssignmentStatus:   c.DefaultPostForm("assignmentStatus", "new"),
	}

	for _, field := range leadFileFields {
		fh := firstFile(form, field)
		if fh == nil {
			continue
		}
		publicPath, err := utils.StoreLeadFile(fh, field)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		setLeadFileURL(&lead, field, publicPath)
	}

	if err := utils.CRMDB.Create(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Duplicate order ID: " + orderID + ". A lead with this order ID already exists.",
			})
			return
		}
		log.Printf("Create lead error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		return
	}

	notifyAssignment(lead.ID, lead.AssignTeamMember)

	c.JSON(http.StatusCreated, lead)
}

func fieldPresent(v string) bool {
	for _, r := range v {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

func setLeadFileURL(lead *models.Lead, field, publicPath string) {
	switch field {
	case "aadhaarPdf":
		lead.AadhaarPdfURL = publicPath
	case "panPdf":
		lead.PanPdfURL = publicPath
	case "optionalPdf":
		lead.OptionalPdfURL = publicPath
	case "clientImage":
		lead.ClientImageURL = publicPath
	case "billDoc":
		lead.BillDocURL = publicPath
	}
}

func leadFileURL(lead *models.Lead, field string) string {
	switch field {
	case "aadhaarPdf":
		return lead.AadhaarPdfURL
	case "panPdf":
		return lead.PanPdfURL
	case "optionalPdf":
		return lead.OptionalPdfURL
	case "clientImage":
		return lead.ClientImageURL
	case "billDoc":
		return lead.BillDocURL
	}
	return ""
}

func UpdateLead(c *gin.Context) {
	var existing models.Lead
	if err := utils.CRMDB.First(&existing, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	if orderID, ok := c.GetPostForm("orderId"); ok && orderID != existing.OrderID {
		var duplicate models.Lead
		if err := utils.CRMDB.Where("order_id = ?", orderID).First(&duplicate).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Duplicate order ID: " + orderID + ". Another lead with this order ID already exists.",
			})
			return
		}
	}

	oldAssignedMember := existing.AssignTeamMember

	merge := func(field string, dst *string) {
		if v, ok := c.GetPostForm(field); ok {
			*dst = v
		}
	}

	merge("employeeName", &existing.EmployeeName)
	merge("source", &existing.Source)
	merge("otherSource", &existing.OtherSource)
	merge("leadCreatedAt", &existing.LeadCreatedAt)
	merge("expectedCloseDate", &existing.ExpectedCloseDate)
	merge("lastContactedAt", &existing.LastContactedAt)
	merge("stage", &existing.Stage)
	merge("comment", &existing.Comment)
	merge("remarks", &existing.Remarks)
	merge("clientName", &existing.ClientName)
	merge("clientCompanyName", &existing.ClientCompanyName)
	merge("productName", &existing.ProductName)
	merge("assignTeamMember", &existing.AssignTeamMember)
	merge("email", &existing.Email)
	merge("phone", &existing.Phone)
	merge("orderId", &existing.OrderID)
	merge("orderDate", &existing.OrderDate)
	merge("clientAddress", &existing.ClientAddress)
	merge("clientKycId", &existing.ClientKycID)
	merge("kycPin", &existing.KycPin)
	merge("downloadStatus", &existing.DownloadStatus)
	merge("processedBy", &existing.ProcessedBy)
	merge("processedAt", &existing.ProcessedAt)
	merge("companyName", &existing.CompanyName)
	merge("companyNameAddress", &existing.CompanyNameAddress)
	merge("paymentStatus", &existing.PaymentStatus)
	merge("paymentStatusNote", &existing.PaymentStatusNote)
	merge("invoiceNumber", &existing.InvoiceNumber)
	merge("invoiceDate", &existing.InvoiceDate)
	merge("billingSentStatus", &existing.BillingSentStatus)
	merge("billingDate", &existing.BillingDate)
	merge("assignmentStatus", &existing.AssignmentStatus)

	if referredByType, ok := c.GetPostForm("referredByType"); ok {
		newType, newBy, newClientID := processReferral(
			referredByType,
			c.PostForm("referredByClientId"),
			c.PostForm("referredByClientName"),
			c.PostForm("referredByOtherName"),
		)
		if newType != "" {
			existing.ReferredByType = newType
			existing.ReferredBy = newBy
			existing.ReferredByClientID = newClientID
		}
	}

	if v, ok := c.GetPostForm("quotedPrice"); ok {
		existing.QuotedPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := c.GetPostForm("discountAmount"); ok {
		existing.DiscountAmount, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := c.GetPostForm("discountType"); ok && v != "" {
		existing.DiscountType = v
	}
	if existing.DiscountType == "" {
		existing.DiscountType = "amount"
	}
	existing.DiscountedPrice = calculateDiscountedPrice(existing.QuotedPrice, existing.DiscountAmount, existing.DiscountType)

	form, _ := c.MultipartForm()
	for _, field := range leadFileFields {
		fh := firstFile(form, field)
		if fh == nil {
			continue
		}
		publicPath, err := utils.StoreLeadFile(fh, field)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		utils.DeleteLocalFile(leadFileURL(&existing, field))
		setLeadFileURL(&existing, field, publicPath)
	}

	if err := utils.CRMDB.Save(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Duplicate order ID: " + existing.OrderID + ". Another lead with this order ID already exists.",
			})
			return
		}
		log.Printf("Update lead error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead"})
		return
	}

	if existing.AssignTeamMember != "" && existing.AssignTeamMember != oldAssignedMember {
		notifyAssignment(existing.ID, existing.AssignTeamMember)
	}

	c.JSON(http.StatusOK, existing)
}

func DeleteLead(c *gin.Context) {
	var lead models.Lead
	if err := utils.CRMDB.First(&lead, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	for _, field := range leadFileFields {
		utils.DeleteLocalFile(leadFileURL(&lead, field))
	}

	if err := utils.CRMDB.Delete(&lead).Error; err != nil {
		log.Printf("Delete lead error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted successfully", "id": lead.ID})
}

func UpdateAssignmentStatus(c *gin.Context) {
	var input struct {
		AssignmentStatus string `json:"assignmentStatus"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.AssignmentStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Assignment status is required"})
		return
	}

	var lead models.Lead
	if err := utils.CRMDB.First(&lead, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	lead.AssignmentStatus = input.AssignmentStatus
	if err := utils.CRMDB.Save(&lead).Error; err != nil {
		log.Printf("Update assignment status error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment status"})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// GetAssignedLeads returns every lead for admins and managers, and only the
// leads assigned to the user's full name for everyone else.
func GetAssignedLeads(c *gin.Context) {
	userID := c.Query("userId")
	role := c.Query("role")

	if userID == "" || role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and role are required"})
		return
	}

	var leadList []models.Lead

	if role == "admin" || role == "manager" {
		if err := utils.CRMDB.Order("created_at DESC").Find(&leadList).Error; err != nil {
			log.Printf("Get assigned leads error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assigned leads"})
			return
		}
	} else {
		var user models.User
		if err := utils.CRMDB.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := utils.CRMDB.Where("assign_team_member = ?", user.FullName).
			Order("created_at DESC").Find(&leadList).Error; err != nil {
			log.Printf("Get assigned leads error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assigned leads"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"leads": leadList, "total": len(leadList)})
}

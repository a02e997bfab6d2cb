package leads

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
)

// flexString decodes a JSON string or number. Spreadsheet exports are not
// consistent about quoting numeric columns.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ImportLeadRow is one raw record parsed from the upload spreadsheet. All
// fields arrive as strings; conversion happens after validation.
type ImportLeadRow struct {
	EmployeeName      string `json:"employeeName"`
	Source            string `json:"source"`
	OtherSource       string `json:"otherSource"`
	LeadCreatedAt     string `json:"leadCreatedAt"`
	ExpectedCloseDate string `json:"expectedCloseDate"`
	LastContactedAt   string `json:"lastContactedAt"`
	Stage             string `json:"stage"`
	Comment           string `json:"comment"`
	Remarks           string `json:"remarks"`

	ClientName        string `json:"clientName"`
	ClientCompanyName string `json:"clientCompanyName"`
	ProductName       string `json:"productName"`
	AssignTeamMember  string `json:"assignTeamMember"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	OrderID           string `json:"orderId"`
	OrderDate         string `json:"orderDate"`
	ClientAddress     string `json:"clientAddress"`
	ClientKycID       string `json:"clientKycId"`
	KycPin            string `json:"kycPin"`
	DownloadStatus    string `json:"downloadStatus"`
	ProcessedBy       string `json:"processedBy"`
	ProcessedAt       string `json:"processedAt"`

	AadhaarPdfURL  string `json:"aadhaarPdfUrl"`
	PanPdfURL      string `json:"panPdfUrl"`
	OptionalPdfURL string `json:"optionalPdfUrl"`
	ClientImageURL string `json:"clientImageUrl"`
	BillDocURL     string `json:"billDocUrl"`

	QuotedPrice        flexString `json:"quotedPrice"`
	CompanyName        string     `json:"companyName"`
	CompanyNameAddress string     `json:"companyNameAddress"`
	PaymentStatus      string     `json:"paymentStatus"`
	PaymentStatusNote  string     `json:"paymentStatusNote"`
	InvoiceNumber      string     `json:"invoiceNumber"`
	InvoiceDate        string     `json:"invoiceDate"`
	BillingSentStatus  string     `json:"billingSentStatus"`
	BillingDate        string     `json:"billingDate"`
}

// requiredImportValues lists the required fields in validation order. The
// import list is stricter than single create: downloadStatus and
// paymentStatus must be present, they cannot default.
func (r ImportLeadRow) requiredImportValues() []struct{ Name, Value string } {
	return []struct{ Name, Value string }{
		{"employeeName", r.EmployeeName},
		{"source", r.Source},
		{"leadCreatedAt", r.LeadCreatedAt},
		{"stage", r.Stage},
		{"clientName", r.ClientName},
		{"clientCompanyName", r.ClientCompanyName},
		{"productName", r.ProductName},
		{"assignTeamMember", r.AssignTeamMember},
		{"email", r.Email},
		{"phone", r.Phone},
		{"orderId", r.OrderID},
		{"orderDate", r.OrderDate},
		{"clientAddress", r.ClientAddress},
		{"clientKycId", r.ClientKycID},
		{"kycPin", r.KycPin},
		{"downloadStatus", r.DownloadStatus},
		{"processedBy", r.ProcessedBy},
		{"processedAt", r.ProcessedAt},
		{"quotedPrice", string(r.QuotedPrice)},
		{"companyNameAddress", r.CompanyNameAddress},
		{"paymentStatus", r.PaymentStatus},
		{"billingSentStatus", r.BillingSentStatus},
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// validateImportRow checks one record against the user directory and the
// order IDs claimed so far (existing leads plus earlier rows in this batch).
// The first failing check wins; the returned message is empty for a valid
// row. seenOrderIDs is a plain accumulator owned by the caller, so the
// validator has no hidden state.
func validateImportRow(row ImportLeadRow, seenOrderIDs map[string]bool, userNames []string) string {
	if seenOrderIDs[row.OrderID] {
		return fmt.Sprintf("Duplicate order ID: %s. A lead with this order ID already exists.", row.OrderID)
	}

	var missing []string
	for _, f := range row.requiredImportValues() {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", ")
	}

	if !contains(userNames, row.EmployeeName) {
		return fmt.Sprintf("Employee Name %q not found. Available users: %s", row.EmployeeName, strings.Join(userNames, ", "))
	}
	if !contains(userNames, row.AssignTeamMember) {
		return fmt.Sprintf("Assign Team Member %q not found. Available users: %s", row.AssignTeamMember, strings.Join(userNames, ", "))
	}
	if !contains(userNames, row.ProcessedBy) {
		return fmt.Sprintf("Processed By %q not found. Available users: %s", row.ProcessedBy, strings.Join(userNames, ", "))
	}

	if !contains(models.ValidSources, row.Source) {
		return fmt.Sprintf("Invalid Source %q. Must be one of: %s", row.Source, strings.Join(models.ValidSources, ", "))
	}
	if !contains(models.ValidStages, row.Stage) {
		return fmt.Sprintf("Invalid Stage %q. Must be one of: %s", row.Stage, strings.Join(models.ValidStages, ", "))
	}
	if !contains(models.ValidDownloadStatuses, row.DownloadStatus) {
		return fmt.Sprintf("Invalid Download Status %q. Must be one of: %s", row.DownloadStatus, strings.Join(models.ValidDownloadStatuses, ", "))
	}
	if !contains(models.ValidPaymentStatuses, row.PaymentStatus) {
		return fmt.Sprintf("Invalid Payment Status %q. Must be one of: %s", row.PaymentStatus, strings.Join(models.ValidPaymentStatuses, ", "))
	}
	if !contains(models.ValidBillingStatuses, row.BillingSentStatus) {
		return fmt.Sprintf("Invalid Billing Sent Status %q. Must be one of: %s", row.BillingSentStatus, strings.Join(models.ValidBillingStatuses, ", "))
	}

	if row.Source == "Other" && strings.TrimSpace(row.OtherSource) == "" {
		return `Other Source is required when Source is "Other"`
	}

	return ""
}

func (r ImportLeadRow) toLead() models.Lead {
	quotedPrice, _ := strconv.ParseFloat(strings.TrimSpace(string(r.QuotedPrice)), 64)

	return models.Lead{
		EmployeeName:      r.EmployeeName,
		Source:            r.Source,
		OtherSource:       r.OtherSource,
		LeadCreatedAt:     r.LeadCreatedAt,
		ExpectedCloseDate: r.ExpectedCloseDate,
		LastContactedAt:   r.LastContactedAt,
		Stage:             r.Stage,
		Comment:           r.Comment,
		Remarks:           r.Remarks,

		ClientName:        r.ClientName,
		ClientCompanyName: r.ClientCompanyName,
		ProductName:       r.ProductName,
		AssignTeamMember:  r.AssignTeamMember,
		Email:             r.Email,
		Phone:             r.Phone,
		OrderID:           r.OrderID,
		OrderDate:         r.OrderDate,
		ClientAddress:     r.ClientAddress,
		ClientKycID:       r.ClientKycID,
		KycPin:            r.KycPin,
		DownloadStatus:    r.DownloadStatus,
		ProcessedBy:       r.ProcessedBy,
		ProcessedAt:       r.ProcessedAt,

		AadhaarPdfURL:  r.AadhaarPdfURL,
		PanPdfURL:      r.PanPdfURL,
		OptionalPdfURL: r.OptionalPdfURL,
		ClientImageURL: r.ClientImageURL,
		BillDocURL:     r.BillDocURL,

		QuotedPrice:        quotedPrice,
		CompanyName:        r.CompanyName,
		CompanyNameAddress: r.CompanyNameAddress,
		PaymentStatus:      r.PaymentStatus,
		PaymentStatusNote:  r.PaymentStatusNote,
		InvoiceNumber:      r.InvoiceNumber,
		InvoiceDate:        r.InvoiceDate,
		BillingSentStatus:  r.BillingSentStatus,
		BillingDate:        r.BillingDate,

		// The import path never computes a discount; discountedPrice stays
		// at the column default.
		AssignmentStatus: "new",
	}
}

type importOutcome struct {
	Row        int    `json:"row"`
	ClientName string `json:"clientName"`
	ID         string `json:"id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func clientNameOrUnknown(row ImportLeadRow) string {
	if row.ClientName != "" {
		return row.ClientName
	}
	return "Unknown"
}

// BulkUploadLeads validates and persists a batch of lead records. Rows are
// processed strictly in order: each row's duplicate check sees the order IDs
// claimed by every earlier successful row. A bad row is reported and skipped,
// never aborting the batch.
func BulkUploadLeads(c *gin.Context) {
	var input struct {
		Leads []ImportLeadRow `json:"leads"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || len(input.Leads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No leads data provided"})
		return
	}

	var users []models.User
	if err := utils.CRMDB.Find(&users).Error; err != nil {
		log.Printf("Bulk upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process bulk upload"})
		return
	}
	userNames := make([]string, len(users))
	for i, u := range users {
		userNames[i] = u.FullName
	}

	var existingOrderIDs []string
	if err := utils.CRMDB.Model(&models.Lead{}).Pluck("order_id", &existingOrderIDs).Error; err != nil {
		log.Printf("Bulk upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process bulk upload"})
		return
	}

	seenOrderIDs := make(map[string]bool, len(existingOrderIDs))
	for _, id := range existingOrderIDs {
		seenOrderIDs[id] = true
	}

	success := []importOutcome{}
	failed := []importOutcome{}

	for i, row := range input.Leads {
		displayRow := i + 2 // row 1 is the spreadsheet header

		if msg := validateImportRow(row, seenOrderIDs, userNames); msg != "" {
			failed = append(failed, importOutcome{
				Row:        displayRow,
				ClientName: clientNameOrUnknown(row),
				Error:      msg,
			})
			continue
		}

		lead := row.toLead()
		if err := utils.CRMDB.Create(&lead).Error; err != nil {
			log.Printf("Bulk upload row %d save error: %v", displayRow, err)
			failed = append(failed, importOutcome{
				Row:        displayRow,
				ClientName: clientNameOrUnknown(row),
				Error:      "Failed to create lead",
			})
			continue
		}

		seenOrderIDs[lead.OrderID] = true

		notifyAssignment(lead.ID, lead.AssignTeamMember)

		success = append(success, importOutcome{
			Row:        displayRow,
			ClientName: lead.ClientName,
			ID:         lead.ID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Bulk upload completed. %d succeeded, %d failed.", len(success), len(failed)),
		"results": gin.H{
			"success": success,
			"failed":  failed,
		},
		"totalProcessed": len(input.Leads),
	})
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enumerated values accepted on a lead. Validation happens in the handlers;
// the columns stay plain varchars.
var (
	ValidSources          = []string{"Survey", "Facebook", "Website", "Other"}
	ValidStages           = []string{"Lead", "Contacted", "Qualified", "Proposal Made", "Won", "Lost", "Fridge"}
	ValidDownloadStatuses = []string{"completed", "not_complete", "process"}
	ValidPaymentStatuses  = []string{"paid", "pending", "failed", "other"}
	ValidBillingStatuses  = []string{"sent", "not_sent", "process"}
	ValidReferredByTypes  = []string{"fresh", "existing", "other"}
	ValidDiscountTypes    = []string{"amount", "percentage"}
)

type Lead struct {
	ID string `gorm:"type:char(36);primaryKey" json:"id"`

	// Step 1 - Employee
	EmployeeName      string `gorm:"not null" json:"employeeName"`
	Source            string `gorm:"not null" json:"source"`
	OtherSource       string `json:"otherSource"`
	LeadCreatedAt     string `gorm:"type:date" json:"leadCreatedAt"`
	ExpectedCloseDate string `gorm:"type:date" json:"expectedCloseDate"`
	LastContactedAt   string `gorm:"type:date" json:"lastContactedAt"`
	Stage             string `gorm:"default:Lead" json:"stage"`
	Comment           string `gorm:"type:text" json:"comment"`
	Remarks           string `gorm:"type:text" json:"remarks"`

	// Step 2 - Order / Client
	ClientName        string `gorm:"not null" json:"clientName"`
	ClientCompanyName string `json:"clientCompanyName"`
	ProductName       string `json:"productName"`
	AssignTeamMember  string `json:"assignTeamMember"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	OrderID           string `gorm:"column:order_id;uniqueIndex;not null" json:"orderId"`
	OrderDate         string `gorm:"type:date" json:"orderDate"`
	ClientAddress     string `gorm:"type:text" json:"clientAddress"`
	ClientKycID       string `gorm:"column:client_kyc_id" json:"clientKycId"`
	KycPin            string `json:"kycPin"`
	DownloadStatus    string `gorm:"default:process" json:"downloadStatus"`
	ProcessedBy       string `json:"processedBy"`
	ProcessedAt       string `gorm:"type:date" json:"processedAt"`

	// File URLs (public relative paths under /uploads)
	AadhaarPdfURL  string `gorm:"column:aadhaar_pdf_url;type:text" json:"aadhaarPdfUrl"`
	PanPdfURL      string `gorm:"column:pan_pdf_url;type:text" json:"panPdfUrl"`
	OptionalPdfURL string `gorm:"column:optional_pdf_url;type:text" json:"optionalPdfUrl"`
	ClientImageURL string `gorm:"column:client_image_url;type:text" json:"clientImageUrl"`

	// Referral
	ReferredByType     string `gorm:"size:50" json:"referredByType"`
	ReferredBy         string `gorm:"size:255" json:"referredBy"`
	ReferredByClientID string `gorm:"column:referred_by_client_id;size:36" json:"referredByClientId"`

	// Step 3 - Billing
	QuotedPrice        float64 `gorm:"type:decimal(12,2);default:0" json:"quotedPrice"`
	CompanyName        string  `json:"companyName"`
	CompanyNameAddress string  `gorm:"type:text" json:"companyNameAddress"`
	PaymentStatus      string  `gorm:"default:pending" json:"paymentStatus"`
	PaymentStatusNote  string  `json:"paymentStatusNote"`
	InvoiceNumber      string  `json:"invoiceNumber"`
	InvoiceDate        string  `gorm:"type:date" json:"invoiceDate"`
	BillingSentStatus  string  `gorm:"default:not_sent" json:"billingSentStatus"`
	BillingDate        string  `gorm:"type:date" json:"billingDate"`
	BillDocURL         string  `gorm:"column:bill_doc_url;type:text" json:"billDocUrl"`
	DiscountAmount     float64 `gorm:"type:decimal(12,2);default:0" json:"discountAmount"`
	DiscountType       string  `gorm:"size:50;default:amount" json:"discountType"`
	DiscountedPrice    float64 `gorm:"type:decimal(12,2);default:0" json:"discountedPrice"`

	AssignmentStatus string `gorm:"default:new" json:"assignmentStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Lead) TableName() string {
	return "leads"
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

package main

import (
	"log"
	"os"
	"time"

	"crm-server/handlers/auth"
	"crm-server/handlers/leads"
	"crm-server/handlers/notifications"
	"crm-server/handlers/purchaseorders"
	"crm-server/handlers/stores"
	"crm-server/handlers/users"
	"crm-server/migrations"
	"crm-server/seed"
	"crm-server/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}
}

func main() {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "https://crm.vishwnet.com", "https://crm.codeiing.com"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	utils.ConnectDatabase()

	migrations.MigrateUsers()
	migrations.MigrateLeads()
	migrations.MigrateInventory()

	utils.EnsureUploadDirs()

	// Seed Initial Data
	if err := seed.SeedAdminUser(); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	r.Static("/uploads", "./uploads")

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "CRM API Running"})
	})

	// Public auth routes
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/forgot-password", auth.ForgotPassword)
	r.POST("/auth/verify-reset-code", auth.VerifyResetCode)
	r.POST("/auth/reset-password", auth.ResetPassword)

	protected := r.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/add-user", auth.RequireAnyRole("admin"), auth.Register)

		protected.GET("/users", users.GetUsers)
		protected.GET("/users/:id", users.GetUser)

		protected.GET("/leads", leads.ListLeads)
		protected.GET("/leads/:id", leads.GetLead)
		protected.POST("/leads", leads.CreateLead)
		protected.POST("/leads/bulk-upload", leads.BulkUploadLeads)
		protected.PUT("/leads/:id", leads.UpdateLead)
		protected.DELETE("/leads/:id", leads.DeleteLead)
		protected.PATCH("/leads/:id/assignment-status", leads.UpdateAssignmentStatus)
		protected.GET("/lead-assignments", leads.GetAssignedLeads)

		protected.GET("/store", stores.GetAllStores)
		protected.POST("/store/createstore", stores.CreateStore)
		protected.PUT("/store/update/:id", stores.UpdateStore)
		protected.DELETE("/store/delete/:id", auth.RequireAnyRole("admin"), stores.DeleteStore)

		protected.GET("/purchase-orders", purchaseorders.GetAllPurchaseOrders)
		protected.GET("/purchase-orders/:id", purchaseorders.GetPurchaseOrderByID)
		protected.POST("/purchase-orders", auth.RequireAnyRole("admin", "manager"), purchaseorders.CreatePurchaseOrder)
		protected.PUT("/purchase-orders/:id", auth.RequireAnyRole("admin", "manager"), purchaseorders.UpdatePurchaseOrder)
		protected.DELETE("/purchase-orders/:id", auth.RequireAnyRole("admin", "manager"), purchaseorders.DeletePurchaseOrder)

		// Serial routes live at the top level; gin's router cannot mix
		// /purchase-orders/serial/* with /purchase-orders/:id.
		protected.GET("/serial-numbers", purchaseorders.GetAllSerialNumbers)
		protected.GET("/serial-numbers/search", purchaseorders.SearchSerialNumbers)
		protected.POST("/serial-numbers/mark-used", purchaseorders.MarkSerialAsUsed)

		notifications.RegisterNotificationsRoutes(protected)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

package router

import (
	"github.com/gin-gonic/gin"
	"github.com/wagginmeals/backend/internal/interfaces/http/handler"
)

// Handlers holds every HTTP handler the API mounts
type Handlers struct {
	AdminAuth     *handler.AdminAuthHandler
	Billing       *handler.BillingHandler
	Checkout      *handler.CheckoutHandler
	Consultation  *handler.ConsultationHandler
	Content       *handler.ContentHandler
	Discount      *handler.DiscountHandler
	GHL           *handler.GHLHandler
	Inventory     *handler.InventoryHandler
	Newsletter    *handler.NewsletterHandler
	Order         *handler.OrderHandler
	PaymentMethod *handler.PaymentMethodHandler
	Product       *handler.ProductHandler
	Shipping      *handler.ShippingHandler
	Subscription  *handler.SubscriptionHandler
	Tax           *handler.TaxHandler
}

// Guards are the access checks applied per route group.
//
// Admin requires an admin session, Customer a customer token, Caller
// either of the two, and Cron the shared scheduler secret. OptionalCustomer
// identifies a signed-in customer without rejecting guests.
type Guards struct {
	Admin            gin.HandlerFunc
	Customer         gin.HandlerFunc
	OptionalCustomer gin.HandlerFunc
	Caller           gin.HandlerFunc
	Cron             gin.HandlerFunc
}

// Groups builds the domain groups for the storefront, customer and
// back-office surfaces.
func Groups(h Handlers, g Guards) []RouteRegistrar {
	catalog := NewDomainGroup("catalog", "/products").
		GET("", h.Product.ListPublic).
		GET("/:handle", h.Product.GetByHandle).
		GET("/:handle/variants", h.Product.VariantsByHandle)

	variants := NewDomainGroup("variants", "/variants").
		POST("/check-stock", h.Inventory.CheckStock)

	shipping := NewDomainGroup("shipping", "/shipping").
		POST("/calculate", h.Shipping.Calculate).
		GET("/zones", h.Shipping.Zones)

	tax := NewDomainGroup("tax", "/tax").
		POST("/calculate", h.Tax.Calculate).
		POST("/breakdown", h.Tax.Breakdown).
		GET("/rates", h.Tax.ListRates).
		POST("/rates", g.Admin, h.Tax.CreateRate).
		POST("/rates/import", g.Admin, h.Tax.ImportRates).
		PUT("/rates/:id", g.Admin, h.Tax.UpdateRate).
		DELETE("/rates/:id", g.Admin, h.Tax.DeleteRate)

	discounts := NewDomainGroup("discounts", "/discounts").
		POST("/validate", h.Discount.Validate)

	newsletter := NewDomainGroup("newsletter", "/newsletter").
		POST("/subscribe", h.Newsletter.Subscribe)

	ghl := NewDomainGroup("ghl", "/ghl").
		POST("/contact", h.GHL.Contact).
		POST("/booking", h.GHL.Booking)

	consultations := NewDomainGroup("consultations", "/consultations").
		Use(g.OptionalCustomer).
		POST("/questionnaire", h.Consultation.SubmitQuestionnaire).
		POST("/complete-payment", h.Consultation.CompletePayment)

	checkout := NewDomainGroup("checkout", "/checkout").
		Use(g.OptionalCustomer).
		POST("/create-order", h.Checkout.CreateOrder).
		POST("/create-subscription", h.Checkout.CreateSubscription)

	caseStudies := NewDomainGroup("case-studies", "/case-studies").
		GET("", h.Content.PublishedCaseStudies)

	paymentMethods := NewDomainGroup("payment-methods", "/payment-methods").
		Use(g.Customer).
		GET("", h.PaymentMethod.List).
		POST("", h.PaymentMethod.Add).
		DELETE("/:id", h.PaymentMethod.Remove).
		POST("/:id/default", h.PaymentMethod.SetDefault)

	orders := NewDomainGroup("orders", "/orders").
		Use(g.Customer).
		GET("/my-orders", h.Order.MyOrders)

	subscriptions := NewDomainGroup("subscriptions", "/subscriptions").
		Use(g.Caller).
		GET("", h.Subscription.ListMine).
		POST("", h.Subscription.Create).
		GET("/:id", h.Subscription.Get).
		PATCH("/:id", h.Subscription.Update).
		DELETE("/:id", h.Subscription.Cancel).
		POST("/:id/pause", h.Subscription.Pause).
		POST("/:id/resume", h.Subscription.Resume).
		POST("/:id/change-frequency", h.Subscription.ChangeFrequency).
		POST("/:id/skip-next", h.Subscription.SkipNext).
		PUT("/:id/items", h.Subscription.UpdateItems).
		PUT("/:id/address", h.Subscription.UpdateAddress).
		GET("/:id/invoices", h.Subscription.Invoices).
		GET("/:id/history", h.Subscription.History)

	cron := NewDomainGroup("cron", "/cron").
		Use(g.Cron).
		POST("/process-billing", h.Billing.ProcessBilling).
		POST("/retry-failed-payments", h.Billing.RetryFailedPayments)

	return []RouteRegistrar{
		catalog, variants, shipping, tax, discounts, newsletter, ghl,
		consultations, checkout, caseStudies,
		paymentMethods, orders, subscriptions,
		cron, adminGroup(h, g),
	}
}

func adminGroup(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		POST("/login", h.AdminAuth.Login).
		POST("/logout", h.AdminAuth.Logout).
		GET("/auth/check", h.AdminAuth.Check)

	admin.Group("admin-products", "/products").
		Use(g.Admin).
		GET("", h.Product.List).
		POST("", h.Product.Create).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete).
		GET("/:id/variants", h.Product.ListVariants).
		POST("/:id/variants", h.Product.CreateVariant)

	admin.Group("admin-variants", "/variants").
		Use(g.Admin).
		PUT("/:id", h.Product.UpdateVariant).
		DELETE("/:id", h.Product.DeleteVariant).
		POST("/:id/adjust-inventory", h.Inventory.Adjust).
		GET("/:id/adjustments", h.Inventory.Adjustments)

	admin.Group("admin-inventory", "/inventory").
		Use(g.Admin).
		POST("/bulk-update", h.Inventory.BulkUpdate).
		GET("/low-stock", h.Inventory.LowStock).
		GET("/history", h.Inventory.History)

	admin.Group("admin-orders", "/orders").
		Use(g.Admin).
		GET("", h.Order.List).
		GET("/:id", h.Order.Get).
		PATCH("/:id/shipping", h.Order.UpdateShipping).
		GET("/:id/packing-slip", h.Order.PackingSlip)

	admin.Group("admin-subscriptions", "/subscriptions").
		Use(g.Admin).
		GET("", h.Subscription.List).
		GET("/:id", h.Subscription.Get).
		PATCH("/:id", h.Subscription.AdminUpdate).
		GET("/:id/history", h.Subscription.History).
		GET("/:id/invoices", h.Subscription.Invoices).
		POST("/manual-billing", h.Billing.ManualBilling)

	admin.Group("admin-invoices", "/invoices").
		Use(g.Admin).
		GET("/failed", h.Billing.FailedInvoices)

	admin.Group("admin-discounts", "/discounts").
		Use(g.Admin).
		GET("", h.Discount.List).
		GET("/:id", h.Discount.Get).
		POST("", h.Discount.Create).
		PUT("/:id", h.Discount.Update).
		DELETE("/:id", h.Discount.Delete)

	admin.Group("admin-newsletter", "/newsletter").
		Use(g.Admin).
		GET("", h.Newsletter.List)

	admin.Group("admin-consultations", "/consultations").
		Use(g.Admin).
		GET("", h.Consultation.List).
		GET("/:id", h.Consultation.Get).
		PATCH("/:id", h.Consultation.Update)

	admin.Group("admin-case-studies", "/case-studies").
		Use(g.Admin).
		GET("", h.Content.ListCaseStudies).
		GET("/:id", h.Content.GetCaseStudy).
		POST("", h.Content.CreateCaseStudy).
		PUT("/:id", h.Content.UpdateCaseStudy).
		DELETE("/:id", h.Content.DeleteCaseStudy)

	admin.Group("admin-archive", "/archive").
		Use(g.Admin).
		GET("", h.Content.ListArchived).
		POST("", h.Content.Archive).
		POST("/restore", h.Content.Restore)

	admin.Group("admin-uploads", "/upload-image").
		Use(g.Admin).
		POST("", h.Content.UploadImage)

	return admin
}

package models

// All returns every model in migration order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CustomerModel{},
		&ProductModel{},
		&VariantModel{},
		&PaymentMethodModel{},
		&SubscriptionModel{},
		&InvoiceModel{},
		&HistoryModel{},
		&OrderModel{},
		&OrderItemModel{},
		&TaxRateModel{},
		&DiscountModel{},
		&InventoryTransactionModel{},
		&SubscriberModel{},
		&ConsultationModel{},
		&CaseStudyModel{},
		&ArchiveSnapshotModel{},
	}
}

package model

// All lists every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&GSTMaster{},
		&CompanyProfile{},
		&Customer{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
	}
}

package config

const (
	// MaxPaymentRefLength is the maximum length of a payment reference.
	// Gateway transaction ids are far shorter; anything longer is garbage.
	MaxPaymentRefLength = 255

	// MaxPurchaseItems caps the number of lines in one purchase.
	MaxPurchaseItems = 500

	// MaxBulkNodes caps the ids accepted by one bulk access or price preview call.
	MaxBulkNodes = 5000
)

package domain

var Tables = []interface{}{
	// Inventory
	&Car{},
	&CarImage{},
	// Members
	&User{},
	&UserFavorite{},
	&UserSaved{},
	&UserActivity{},
	&PriceAlert{},
	// Site
	&CarEnquiry{},
	&ContactMessage{},
	&NewsletterSubscriber{},
}

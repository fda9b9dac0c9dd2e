package mongodb

const (
	UsersCollection         = "users"
	ShopItemsCollection     = "shop_items"
	PurchasesCollection     = "purchases"
	LoginLogsCollection     = "login_logs"
	ServerLogsCollection    = "server_logs"
	AdminCommandsCollection = "admin_commands"
)

package platforms

// Guide 連携セットアップ手順
type Guide struct {
	Platform Kind     `json:"platform"`
	Steps    []string `json:"steps"`
	Webhooks []string `json:"webhooks,omitempty"`
	Note     string   `json:"note,omitempty"`
}

var guides = map[Kind]Guide{
	KindShopify: {
		Platform: KindShopify,
		Steps: []string{
			"1. Go to Shopify Admin > Apps > Manage private apps",
			"2. Create a private app with these permissions: Products (Read/Write), Orders (Read), Inventory (Read)",
			"3. Copy the API key and password",
			"4. Set SHOPIFY_SHOP_DOMAIN and SHOPIFY_ACCESS_TOKEN",
		},
		Webhooks: []string{"orders/create", "products/update", "inventory_levels/update"},
	},
	KindWooCommerce: {
		Platform: KindWooCommerce,
		Steps: []string{
			"1. Install WooCommerce REST API plugin",
			"2. Go to WooCommerce > Settings > Advanced > REST API",
			"3. Create new API keys with Read/Write permissions",
			"4. Copy consumer key and secret",
			"5. Set WOOCOMMERCE_SITE_URL, WOOCOMMERCE_CONSUMER_KEY and WOOCOMMERCE_CONSUMER_SECRET",
		},
		Webhooks: []string{"woocommerce_new_order", "woocommerce_product_updated", "woocommerce_low_stock"},
	},
	KindAmazon: {
		Platform: KindAmazon,
		Steps: []string{
			"1. Register as Amazon seller and get MWS credentials",
			"2. Create SP-API application in Seller Central",
			"3. Get refresh token, client ID, and secret",
			"4. Configure IAM roles for API access",
			"5. Set AMAZON_REFRESH_TOKEN, AMAZON_CLIENT_ID, AMAZON_CLIENT_SECRET and AMAZON_REGION",
		},
		Note: "Amazon integration requires additional setup and approval",
	},
}

// SetupGuide プラットフォームの連携手順を返す
func SetupGuide(kind Kind) (Guide, bool) {
	g, ok := guides[kind]
	if !ok {
		return Guide{}, false
	}
	g.Steps = append([]string(nil), g.Steps...)
	g.Webhooks = append([]string(nil), g.Webhooks...)
	return g, true
}

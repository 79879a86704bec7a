package cache

// Topic names a mutation category. Every write path publishes the topics it
// touched; the key tables below map each topic to the concrete dashboard keys
// that must drop. Keys are enumerated here rather than swept by pattern so no
// key-scan ever runs against the cache backend.
type Topic string

const (
	TopicProduct   Topic = "product"
	TopicCategory  Topic = "category"
	TopicOrder     Topic = "order"
	TopicInventory Topic = "inventory"
	TopicRental    Topic = "rental"
	TopicToga      Topic = "toga"
)

var keysByTopic = map[Topic][]string{
	TopicProduct: {
		"product_list",
		"product_barcodes",
		"inventory_levels",
		"dashboard_summary",
	},
	TopicCategory: {
		"category_list",
		"product_list",
	},
	TopicOrder: {
		"orders_recent",
		"orders_search",
		"sales_today",
		"dashboard_summary",
		"reports_sales",
		"sales_analytics",
	},
	TopicInventory: {
		"inventory_levels",
		"low_stock_products",
		"dashboard_summary",
		"reports_inventory",
	},
	TopicRental: {
		"rentals_active",
		"reports_rentals",
		"dashboard_summary",
	},
	TopicToga: {
		"toga_rentals_active",
		"dashboard_summary",
	},
}

// KeysFor returns the concrete cache keys registered for a topic.
func KeysFor(topic Topic) []string {
	keys := keysByTopic[topic]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/shopspring/decimal"
)

// DemoProducts デモ用の商品カタログ
var DemoProducts = []models.Product{
	{ID: "P001", Name: "Wireless Earbuds", Category: "Electronics", BasePrice: 59.99, Cost: 25},
	{ID: "P002", Name: "Yoga Mat", Category: "Fitness", BasePrice: 29.99, Cost: 12},
	{ID: "P003", Name: "Water Bottle", Category: "Accessories", BasePrice: 19.99, Cost: 8},
	{ID: "P004", Name: "Phone Case", Category: "Electronics", BasePrice: 14.99, Cost: 5},
	{ID: "P005", Name: "Backpack", Category: "Accessories", BasePrice: 49.99, Cost: 20},
}

type ticketTemplate struct {
	category string
	issue    string
	response string
}

// 返信テンプレートの ORDER_ID / DATE は返信生成時に置換される
var demoTicketTemplates = []ticketTemplate{
	{"Shipping", "Where is my order?", "I understand you're concerned about your order. Let me check the tracking information for you. Your order ORDER_ID is currently in transit and should arrive by DATE."},
	{"Product", "Product defective", "I'm sorry to hear you're having issues with your product. We stand behind our quality. I'll send you a prepaid return label and ship a replacement immediately."},
	{"Returns", "How do I return?", "I'd be happy to help with your return. Our return policy allows returns within 30 days. I'll email you a return label and instructions right away."},
	{"Sizing", "Wrong size", "I apologize for the sizing issue. We want you to have the perfect fit. I'll arrange an exchange for the correct size with free shipping both ways."},
	{"Payment", "Payment failed", "I see there was an issue with your payment. This sometimes happens due to bank security. Please try again or use a different payment method. I'm here if you need help."},
}

const (
	demoHistoryDays     = 90
	demoStartStock      = 100
	demoRestockBelow    = 20
	demoRestockQuantity = 50
	demoLeadTimeDays    = 7
	demoTicketCount     = 50
	demoPriceWeeks      = 12
)

// GenerateDemoData 販売・在庫・サポート・価格履歴のデモデータを生成
// 同じ seed と now からは常に同じデータセットが得られる。
func GenerateDemoData(seed int64, now time.Time) Dataset {
	rng := rand.New(rand.NewSource(seed))
	today := now.Format("2006-01-02")

	var data Dataset
	for _, product := range DemoProducts {
		stock := demoStartStock
		for d := 0; d < demoHistoryDays; d++ {
			date := now.AddDate(0, 0, -(demoHistoryDays - d))

			// 週末は販売が多い
			base := 5.0
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				base = 8.0
			}
			qty := int(math.Floor(base + rng.Float64()*5 - 2))
			price := roundMoney(product.BasePrice * (0.9 + rng.Float64()*0.2))

			data.Sales = append(data.Sales, models.SaleRecord{
				Date:        date.Format("2006-01-02"),
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    qty,
				Price:       price,
				Revenue:     roundMoney(float64(qty) * price),
			})

			stock -= qty
			if stock < demoRestockBelow {
				stock += demoRestockQuantity
			}
		}

		data.Inventory = append(data.Inventory, models.InventorySnapshot{
			ProductID:       product.ID,
			ProductName:     product.Name,
			CurrentStock:    stock,
			ReorderPoint:    demoRestockBelow,
			ReorderQuantity: demoRestockQuantity,
			LeadTimeDays:    demoLeadTimeDays,
			LastRestockDate: today,
		})

		for week := 0; week < demoPriceWeeks; week++ {
			competitor := roundMoney(product.BasePrice * (0.85 + rng.Float64()*0.3))
			ours := roundMoney(product.BasePrice * (0.9 + rng.Float64()*0.2))
			data.PriceHistory = append(data.PriceHistory, models.PriceHistoryEntry{
				Date:               now.AddDate(0, 0, -week*7).Format("2006-01-02"),
				ProductID:          product.ID,
				ProductName:        product.Name,
				OurPrice:           ours,
				CompetitorAvgPrice: competitor,
				PricePosition:      pricePosition(ours, competitor),
				Margin:             roundMoney((ours - product.Cost) / ours * 100),
			})
		}
	}

	for i := 0; i < demoTicketCount; i++ {
		tpl := demoTicketTemplates[rng.Intn(len(demoTicketTemplates))]
		date := now.AddDate(0, 0, -rng.Intn(30))
		status := "pending"
		if rng.Float64() > 0.3 {
			status = "resolved"
		}
		data.Tickets = append(data.Tickets, models.SupportTicket{
			TicketID:          fmt.Sprintf("T%04d", i+1),
			Date:              date.Format("2006-01-02"),
			CustomerEmail:     fmt.Sprintf("customer%d@email.com", i),
			Category:          tpl.category,
			Subject:           tpl.issue,
			Message:           fmt.Sprintf("Hello, %s. Order #%d. Please help!", lowerFirst(tpl.issue), 1000+i),
			SuggestedResponse: tpl.response,
			Status:            status,
		})
	}

	return data
}

func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

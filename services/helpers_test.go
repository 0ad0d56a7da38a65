package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"gorm.io/gorm"
)

type catalogFixture struct {
	mains      models.Category
	drinks     models.Category
	kabsa      models.Item
	regular    models.ItemSize
	large      models.ItemSize
	water      models.Item
	retired    models.Item
	extraMeat  models.Modifier
	extraSauce models.Modifier
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()
	ctx := context.Background()
	catalog := NewCatalogService(db)

	mains, err := catalog.CreateCategory(ctx, CategoryInput{NameEn: strPtr("Mains"), NameAr: strPtr("الأطباق الرئيسية"), SortOrder: intPtr(1)})
	require.NoError(t, err)
	drinks, err := catalog.CreateCategory(ctx, CategoryInput{NameEn: strPtr("Drinks"), NameAr: strPtr("مشروبات"), SortOrder: intPtr(2)})
	require.NoError(t, err)

	extraMeat, err := catalog.CreateModifier(ctx, ModifierInput{NameEn: strPtr("Extra Meat"), NameAr: strPtr("لحم إضافي"), Price: decPtr("15.00")})
	require.NoError(t, err)
	extraSauce, err := catalog.CreateModifier(ctx, ModifierInput{NameEn: strPtr("Extra Sauce"), Price: decPtr("2.00")})
	require.NoError(t, err)

	kabsa, err := catalog.CreateItem(ctx, ItemInput{
		CategoryID: &mains.ID,
		NameEn:     strPtr("Kabsa"),
		NameAr:     strPtr("كبسة"),
		Price:      decPtr("45.00"),
		Sizes: []SizeInput{
			{NameEn: "Regular", NameAr: "عادي", Price: dec("45.00"), SortOrder: 1},
			{NameEn: "Large", NameAr: "كبير", Price: dec("65.00"), SortOrder: 2},
		},
		ModifierIDs: []uint{extraMeat.ID},
	})
	require.NoError(t, err)

	water, err := catalog.CreateItem(ctx, ItemInput{
		CategoryID: &drinks.ID,
		NameEn:     strPtr("Water"),
		NameAr:     strPtr("ماء"),
		Price:      decPtr("5.00"),
	})
	require.NoError(t, err)

	retired, err := catalog.CreateItem(ctx, ItemInput{
		CategoryID: &mains.ID,
		NameEn:     strPtr("Old Special"),
		Price:      decPtr("30.00"),
	})
	require.NoError(t, err)
	retired, err = catalog.UpdateItem(ctx, retired.ID, ItemInput{Active: boolPtr(false)})
	require.NoError(t, err)

	return catalogFixture{
		mains:      *mains,
		drinks:     *drinks,
		kabsa:      *kabsa,
		regular:    kabsa.Sizes[0],
		large:      kabsa.Sizes[1],
		water:      *water,
		retired:    *retired,
		extraMeat:  *extraMeat,
		extraSauce: *extraSauce,
	}
}

var userSeq int64

func seedUser(t *testing.T, db *gorm.DB, role policy.Role) *models.User {
	t.Helper()
	n := atomic.AddInt64(&userSeq, 1)
	user, err := NewUserService(db).Create(context.Background(), CreateUserInput{
		Username: fmt.Sprintf("%s%d", role, n),
		Name:     fmt.Sprintf("Test %s %d", role, n),
		Password: "secret123",
		Role:     string(role),
	})
	require.NoError(t, err)
	return user
}

// headerOrder creates an order without lines for the given declared amounts.
func headerOrder(t *testing.T, svc *OrderService, subtotal, serviceCharge, discount, total string) *models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateOrderInput{
		Type:          models.OrderTypeTakeaway,
		Subtotal:      decPtr(subtotal),
		ServiceCharge: decPtr(serviceCharge),
		Discount:      decPtr(discount),
		Total:         decPtr(total),
	})
	require.NoError(t, err)
	return order
}

type recordedEvent struct {
	name string
	data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

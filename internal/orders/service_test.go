package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Fakes en mémoire ---

type fakeStore struct {
	products map[primitive.ObjectID]*models.Product
	orders   map[primitive.ObjectID]*models.Order
	users    map[string]*models.User

	failDecrement map[primitive.ObjectID]bool
	failInsert    bool

	decrements int
	increments int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:      map[primitive.ObjectID]*models.Product{},
		orders:        map[primitive.ObjectID]*models.Order{},
		users:         map[string]*models.User{},
		failDecrement: map[primitive.ObjectID]bool{},
	}
}

func (f *fakeStore) GetProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("produit")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return apperr.NotFound("produit")
	}
	if f.failDecrement[id] || p.Stock < qty {
		return apperr.Conflict("stock insuffisant")
	}
	p.Stock -= qty
	f.decrements++
	return nil
}

func (f *fakeStore) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return apperr.NotFound("produit")
	}
	p.Stock += qty
	f.increments++
	return nil
}

func (f *fakeStore) Insert(_ context.Context, order *models.Order) error {
	if f.failInsert {
		return errors.New("insertion échouée")
	}
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.NotFound("commande")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetByPaymentRef(_ context.Context, ref string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.PaymentRef == ref {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("commande")
}

func (f *fakeStore) Update(_ context.Context, order *models.Order) error {
	if _, ok := f.orders[order.ID]; !ok {
		return apperr.NotFound("commande")
	}
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	var list []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			list = append(list, *o)
		}
	}
	return list, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]models.Order, error) {
	var list []models.Order
	for _, o := range f.orders {
		list = append(list, *o)
	}
	return list, nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("utilisateur")
	}
	cp := *u
	return &cp, nil
}

type fakePublisher struct {
	direct    []notify.Event
	broadcast []notify.Event
}

func (p *fakePublisher) PublishToUser(_ context.Context, _ string, e notify.Event) error {
	p.direct = append(p.direct, e)
	return nil
}

func (p *fakePublisher) Broadcast(_ context.Context, e notify.Event) error {
	p.broadcast = append(p.broadcast, e)
	return nil
}

type fakeMailer struct {
	confirmations int
	statusMails   []string
}

func (m *fakeMailer) SendOrderConfirmation(models.Order, string) error {
	m.confirmations++
	return nil
}

func (m *fakeMailer) SendOrderStatus(_ models.Order, _ string, status string) error {
	m.statusMails = append(m.statusMails, status)
	return nil
}

func (m *fakeMailer) SendPasswordReset(string, string) error { return nil }

// --- Helpers ---

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) (*Service, *fakePublisher, *fakeMailer) {
	pub := &fakePublisher{}
	ml := &fakeMailer{}
	svc := NewService(store, store, store, pub, ml)
	svc.now = func() time.Time { return testNow }
	store.users["u1"] = &models.User{ID: "u1", Name: "Awa Bekele", Email: "awa@example.com", Role: models.RoleUser, Provider: "local"}
	return svc, pub, ml
}

func seedProduct(store *fakeStore, name string, price float64, stock int) primitive.ObjectID {
	id := primitive.NewObjectID()
	store.products[id] = &models.Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Category:    "pizza",
		Stock:       stock,
		IsAvailable: true,
	}
	return id
}

func orderInput(items ...CreateItemInput) CreateOrderInput {
	return CreateOrderInput{
		Items:           items,
		DeliveryAddress: "12 rue des Oliviers, Lyon",
		PaymentMethod:   "cash",
	}
}

// --- Création ---

func TestCreateOrderComputesSnapshotTotal(t *testing.T) {
	store := newFakeStore()
	svc, pub, ml := newTestService(store)

	idA := seedProduct(store, "Pizza Margherita", 8.99, 10)
	idB := seedProduct(store, "Lasagnes maison", 12.99, 5)

	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: idA.Hex(), Quantity: 2},
		CreateItemInput{ProductID: idB.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	assert.InDelta(t, 30.97, order.TotalAmount, 0.001)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, testNow.Add(2*time.Hour), order.EstimatedDelivery)

	// Le stock est décrémenté des quantités commandées.
	assert.Equal(t, 8, store.products[idA].Stock)
	assert.Equal(t, 4, store.products[idB].Stock)

	// La commande est persistée.
	persisted, err := store.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Items, 2)

	// Effets de bord : e-mail, canal direct et broadcast admin.
	assert.Equal(t, 1, ml.confirmations)
	require.Len(t, pub.direct, 1)
	assert.Equal(t, notify.EventOrderCreated, pub.direct[0].Type)
	require.Len(t, pub.broadcast, 1)
	assert.Equal(t, notify.EventOrderCreated, pub.broadcast[0].Type)
}

func TestCreateOrderSnapshotSurvivesPriceChange(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Burger double", 10.50, 3)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 2},
	))
	require.NoError(t, err)

	// Le prix du produit change après la commande : le montant figé ne
	// doit jamais être re-dérivé du produit vivant.
	store.products[id].Price = 99.99

	persisted, err := store.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.50, persisted.Items[0].Price, 0.001)
	assert.InDelta(t, 21.00, persisted.TotalAmount, 0.001)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: primitive.NewObjectID().Hex(), Quantity: 1},
	))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, store.orders)
	assert.Zero(t, store.decrements)
}

func TestCreateOrderUnavailableProduct(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Tiramisu", 6.50, 8)
	store.products[id].IsAvailable = false

	_, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 8, store.products[id].Stock)
	assert.Empty(t, store.orders)
}

func TestCreateOrderInsufficientStockLeavesStateUnchanged(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	idA := seedProduct(store, "Pizza Regina", 9.50, 10)
	idB := seedProduct(store, "Salade César", 7.00, 1)

	_, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: idA.Hex(), Quantity: 2},
		CreateItemInput{ProductID: idB.Hex(), Quantity: 3},
	))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Ni commande partielle ni décrément partiel.
	assert.Equal(t, 10, store.products[idA].Stock)
	assert.Equal(t, 1, store.products[idB].Stock)
	assert.Empty(t, store.orders)
}

func TestCreateOrderLostRaceRollsBackReservation(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	idA := seedProduct(store, "Pizza Quatre Fromages", 11.00, 10)
	idB := seedProduct(store, "Panna cotta", 5.50, 10)
	// La validation passera mais le décrément conditionnel de B échoue,
	// comme si une commande concurrente avait consommé le stock entre les
	// deux étapes.
	store.failDecrement[idB] = true

	_, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: idA.Hex(), Quantity: 4},
		CreateItemInput{ProductID: idB.Hex(), Quantity: 1},
	))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Le décrément de A a été compensé.
	assert.Equal(t, 10, store.products[idA].Stock)
	assert.Equal(t, 1, store.increments)
	assert.Empty(t, store.orders)
}

func TestCreateOrderInsertFailureRollsBackReservation(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Spaghetti bolognese", 9.90, 6)
	store.failInsert = true

	_, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 2},
	))
	assert.Error(t, err)
	assert.Equal(t, 6, store.products[id].Stock)
	assert.Empty(t, store.orders)
}

func TestCreateOrderValidation(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)
	id := seedProduct(store, "Crêpe sucrée", 4.50, 5)

	_, err := svc.CreateOrder(context.Background(), "u1", orderInput())
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 0},
	))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: "pas-un-id", Quantity: 1},
	))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in := orderInput(CreateItemInput{ProductID: id.Hex(), Quantity: 1})
	in.DeliveryAddress = "   "
	_, err = svc.CreateOrder(context.Background(), "u1", in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// --- Annulation ---

func TestCancelRestoresStock(t *testing.T) {
	store := newFakeStore()
	svc, pub, ml := newTestService(store)

	idA := seedProduct(store, "Pizza Margherita", 8.99, 10)
	idB := seedProduct(store, "Lasagnes maison", 12.99, 5)

	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: idA.Hex(), Quantity: 2},
		CreateItemInput{ProductID: idB.Hex(), Quantity: 1},
	))
	require.NoError(t, err)
	require.Equal(t, 8, store.products[idA].Stock)

	cancelled, err := svc.Cancel(context.Background(), order.ID.Hex(), "u1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	// Stock restauré au niveau d'avant commande.
	assert.Equal(t, 10, store.products[idA].Stock)
	assert.Equal(t, 5, store.products[idB].Stock)

	assert.Contains(t, ml.statusMails, models.OrderCancelled)
	require.NotEmpty(t, pub.direct)
	assert.Equal(t, models.OrderCancelled, pub.direct[len(pub.direct)-1].Status)
}

func TestCancelTwiceIsRejectedWithoutDoubleRestock(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Burger double", 10.50, 4)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 2},
	))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "u1", models.RoleUser)
	require.NoError(t, err)
	require.Equal(t, 4, store.products[id].Stock)
	incrementsAfterFirst := store.increments

	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "u1", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 4, store.products[id].Stock)
	assert.Equal(t, incrementsAfterFirst, store.increments)
}

func TestCancelShippedOrDeliveredIsRejected(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Pizza Regina", 9.50, 10)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderShipped)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "u1", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	// Aucun restock.
	assert.Equal(t, 9, store.products[id].Stock)
}

func TestCancelForbiddenForStranger(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Salade César", 7.00, 5)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "u2", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, 4, store.products[id].Stock)

	// Un admin peut annuler la commande d'un autre utilisateur.
	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "admin-1", models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, 5, store.products[id].Stock)
}

func TestCancelUnknownOrder(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	_, err := svc.Cancel(context.Background(), primitive.NewObjectID().Hex(), "u1", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// --- Transitions de statut ---

func TestUpdateStatusDeliveredStampsTimestamps(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Pizza Margherita", 8.99, 10)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderDelivered)
	require.NoError(t, err)

	assert.Equal(t, models.OrderDelivered, updated.Status)
	assert.True(t, updated.IsDelivered)
	require.NotNil(t, updated.DeliveredAt)
	assert.Equal(t, testNow, *updated.DeliveredAt)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)

	// Une commande livrée ne s'annule plus.
	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "u1", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdateStatusIsPermissiveBetweenNonTerminalStates(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Burger double", 10.50, 5)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	// delivered → pending est accepté, comme dans le système d'origine.
	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderDelivered)
	require.NoError(t, err)
	back, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, back.Status)
}

func TestUpdateStatusRejectsUnknownAndCancelledTargets(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Tiramisu", 6.50, 5)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), "expédiée")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// L'annulation a sa propre opération (elle porte le restock).
	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderCancelled)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateStatusOnCancelledOrderIsRejected(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Pizza Regina", 9.50, 5)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 2},
	))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID.Hex(), "u1", models.RoleUser)
	require.NoError(t, err)

	// Rejouer un statut sur une commande annulée fausserait le stock
	// déjà restitué.
	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderProcessing)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), models.OrderShipped)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// --- Lecture ---

func TestGetForUserScoping(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	id := seedProduct(store, "Salade César", 7.00, 5)
	order, err := svc.CreateOrder(context.Background(), "u1", orderInput(
		CreateItemInput{ProductID: id.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.GetForUser(context.Background(), order.ID.Hex(), "u2", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := svc.GetForUser(context.Background(), order.ID.Hex(), "u2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"commerce-api/internal/errs"
	"commerce-api/internal/models"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	queryTimeout = 10 * time.Second
)

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Code        string             `bson:"code"`
	Price       float64            `bson:"price"`
	Status      bool               `bson:"status"`
	Stock       int                `bson:"stock"`
	Category    string             `bson:"category"`
	Thumbnails  []string           `bson:"thumbnails"`
}

func (d *productDoc) model() models.Product {
	thumbs := d.Thumbnails
	if thumbs == nil {
		thumbs = []string{}
	}
	return models.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Code:        d.Code,
		Price:       d.Price,
		Status:      d.Status,
		Stock:       d.Stock,
		Category:    d.Category,
		Thumbnails:  thumbs,
	}
}

func newProductDoc(p *models.Product) productDoc {
	return productDoc{
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Status:      p.Status,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  p.Thumbnails,
	}
}

// MongoProductStore persists products in a MongoDB collection, with
// server-side filtering, sorting and pagination.
type MongoProductStore struct {
	collection *mongo.Collection
}

func NewMongoProductStore(collection *mongo.Collection) *MongoProductStore {
	return &MongoProductStore{collection: collection}
}

func (s *MongoProductStore) List(ctx context.Context, f Filter, srt Sort, page, limit int) ([]models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	// Count in parallel with the page fetch.
	totalCh := make(chan int64, 1)
	errCh := make(chan error, 1)
	go func() {
		total, err := s.collection.CountDocuments(ctx, filter)
		if err != nil {
			errCh <- err
			return
		}
		totalCh <- total
	}()

	findOptions := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	switch srt {
	case SortPriceAsc:
		findOptions.SetSort(bson.D{{Key: "price", Value: 1}})
	case SortPriceDesc:
		findOptions.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, errs.Storage("find products", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, errs.Storage("decode products", err)
	}
	ps := make([]models.Product, len(docs))
	for i := range docs {
		ps[i] = docs[i].model()
	}

	select {
	case total := <-totalCh:
		return ps, total, nil
	case err := <-errCh:
		return nil, 0, errs.Storage("count products", err)
	case <-ctx.Done():
		return nil, 0, errs.Storage("count products", ctx.Err())
	}
}

func (s *MongoProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrInvalidID
	}

	var doc productDoc
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("product")
		}
		return nil, errs.Storage("find product", err)
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoProductStore) Insert(ctx context.Context, p *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	doc := newProductDoc(p)
	doc.ID = primitive.NewObjectID()
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return errs.Storage("insert product", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (s *MongoProductStore) InsertMany(ctx context.Context, batch []*models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	docs := make([]interface{}, len(batch))
	ids := make([]primitive.ObjectID, len(batch))
	for i, p := range batch {
		doc := newProductDoc(p)
		doc.ID = primitive.NewObjectID()
		docs[i] = doc
		ids[i] = doc.ID
	}
	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return errs.Storage("insert products", err)
	}
	for i, p := range batch {
		p.ID = ids[i].Hex()
	}
	return nil
}

func (s *MongoProductStore) Update(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrInvalidID
	}

	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Code != nil {
		set["code"] = *u.Code
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Stock != nil {
		set["stock"] = *u.Stock
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Thumbnails != nil {
		set["thumbnails"] = u.Thumbnails
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var doc productDoc
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("product")
		}
		return nil, errs.Storage("update product", err)
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.ErrInvalidID
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return errs.Storage("delete product", err)
	}
	if result.DeletedCount == 0 {
		return errs.NotFound("product")
	}
	return nil
}

type cartItemDoc struct {
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
}

type cartDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Products []cartItemDoc      `bson:"products"`
}

func (d *cartDoc) model() models.Cart {
	items := make([]models.CartItem, len(d.Products))
	for i, it := range d.Products {
		items[i] = models.CartItem{ProductID: it.Product.Hex(), Quantity: it.Quantity}
	}
	return models.Cart{ID: d.ID.Hex(), Products: items}
}

// MongoCartStore persists carts in a MongoDB collection. Saving a cart
// replaces its line items in a single UpdateOne, which is atomic per
// document.
type MongoCartStore struct {
	collection *mongo.Collection
}

func NewMongoCartStore(collection *mongo.Collection) *MongoCartStore {
	return &MongoCartStore{collection: collection}
}

func (s *MongoCartStore) Insert(ctx context.Context) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	doc := cartDoc{ID: primitive.NewObjectID(), Products: []cartItemDoc{}}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return nil, errs.Storage("insert cart", err)
	}
	c := doc.model()
	return &c, nil
}

func (s *MongoCartStore) FindByID(ctx context.Context, id string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrInvalidID
	}

	var doc cartDoc
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("cart")
		}
		return nil, errs.Storage("find cart", err)
	}
	c := doc.model()
	return &c, nil
}

func (s *MongoCartStore) Save(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return errs.ErrInvalidID
	}

	items := make([]cartItemDoc, len(cart.Products))
	for i, it := range cart.Products {
		pid, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return errs.ErrInvalidID
		}
		items[i] = cartItemDoc{Product: pid, Quantity: it.Quantity}
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"products": items}})
	if err != nil {
		return errs.Storage("save cart", err)
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("cart")
	}
	return nil
}

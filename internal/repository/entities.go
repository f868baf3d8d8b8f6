package repository

import (
	"time"

	"github.com/jbweber/homelab/gamestore/internal/domain"
)

func stampCreated(created *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
}

func stampUpdated(updated **time.Time, now time.Time) {
	t := now
	*updated = &t
}

var genreMapping = &entityMapping[domain.Genre]{
	name:    "genre",
	table:   "genres",
	columns: []string{"id", "name", "description", "created_at"},
	id:      func(g *domain.Genre) int64 { return g.ID },
	setID:   func(g *domain.Genre, id int64) { g.ID = id },
	fields: func(g *domain.Genre) []any {
		return []any{&g.ID, &g.Name, &g.Description, &g.CreatedAt}
	},
	values: func(g *domain.Genre) []any {
		return []any{g.Name, g.Description, g.CreatedAt}
	},
	onInsert: func(g *domain.Genre, now time.Time) { stampCreated(&g.CreatedAt, now) },
}

var platformMapping = &entityMapping[domain.Platform]{
	name:    "platform",
	table:   "platforms",
	columns: []string{"id", "name", "description", "created_at"},
	id:      func(p *domain.Platform) int64 { return p.ID },
	setID:   func(p *domain.Platform, id int64) { p.ID = id },
	fields: func(p *domain.Platform) []any {
		return []any{&p.ID, &p.Name, &p.Description, &p.CreatedAt}
	},
	values: func(p *domain.Platform) []any {
		return []any{p.Name, p.Description, p.CreatedAt}
	},
	onInsert: func(p *domain.Platform, now time.Time) { stampCreated(&p.CreatedAt, now) },
}

var gameMapping = &entityMapping[domain.Game]{
	name:  "game",
	table: "games",
	columns: []string{
		"id", "title", "description", "price", "release_date", "image_url",
		"is_active", "created_at", "updated_at", "genre_id", "platform_id",
	},
	id:    func(g *domain.Game) int64 { return g.ID },
	setID: func(g *domain.Game, id int64) { g.ID = id },
	fields: func(g *domain.Game) []any {
		return []any{
			&g.ID, &g.Title, &g.Description, &g.Price, &g.ReleaseDate, &g.ImageURL,
			&g.IsActive, &g.CreatedAt, &g.UpdatedAt, &g.GenreID, &g.PlatformID,
		}
	},
	values: func(g *domain.Game) []any {
		return []any{
			g.Title, g.Description, g.Price, g.ReleaseDate, g.ImageURL,
			g.IsActive, g.CreatedAt, g.UpdatedAt, g.GenreID, g.PlatformID,
		}
	},
	onInsert: func(g *domain.Game, now time.Time) { stampCreated(&g.CreatedAt, now) },
	onUpdate: func(g *domain.Game, now time.Time) { stampUpdated(&g.UpdatedAt, now) },
}

var userMapping = &entityMapping[domain.User]{
	name:  "user",
	table: "users",
	columns: []string{
		"id", "username", "email", "password_hash", "first_name", "last_name", "created_at", "updated_at",
	},
	id:    func(u *domain.User) int64 { return u.ID },
	setID: func(u *domain.User, id int64) { u.ID = id },
	fields: func(u *domain.User) []any {
		return []any{&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt}
	},
	values: func(u *domain.User) []any {
		return []any{u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt}
	},
	onInsert: func(u *domain.User, now time.Time) { stampCreated(&u.CreatedAt, now) },
	onUpdate: func(u *domain.User, now time.Time) { stampUpdated(&u.UpdatedAt, now) },
}

var orderMapping = &entityMapping[domain.Order]{
	name:  "order",
	table: "orders",
	columns: []string{
		"id", "order_number", "order_date", "total_amount", "status", "notes", "user_id", "created_at", "updated_at",
	},
	id:    func(o *domain.Order) int64 { return o.ID },
	setID: func(o *domain.Order, id int64) { o.ID = id },
	fields: func(o *domain.Order) []any {
		return []any{&o.ID, &o.OrderNumber, &o.OrderDate, &o.TotalAmount, &o.Status, &o.Notes, &o.UserID, &o.CreatedAt, &o.UpdatedAt}
	},
	values: func(o *domain.Order) []any {
		return []any{o.OrderNumber, o.OrderDate, o.TotalAmount, o.Status, o.Notes, o.UserID, o.CreatedAt, o.UpdatedAt}
	},
	onInsert: func(o *domain.Order, now time.Time) {
		stampCreated(&o.CreatedAt, now)
		stampCreated(&o.OrderDate, now)
	},
	onUpdate: func(o *domain.Order, now time.Time) { stampUpdated(&o.UpdatedAt, now) },
}

var orderItemMapping = &entityMapping[domain.OrderItem]{
	name:  "order item",
	table: "order_items",
	columns: []string{
		"id", "quantity", "unit_price", "total_price", "order_id", "game_id", "created_at",
	},
	id:    func(i *domain.OrderItem) int64 { return i.ID },
	setID: func(i *domain.OrderItem, id int64) { i.ID = id },
	fields: func(i *domain.OrderItem) []any {
		return []any{&i.ID, &i.Quantity, &i.UnitPrice, &i.TotalPrice, &i.OrderID, &i.GameID, &i.CreatedAt}
	},
	values: func(i *domain.OrderItem) []any {
		return []any{i.Quantity, i.UnitPrice, i.TotalPrice, i.OrderID, i.GameID, i.CreatedAt}
	},
	onInsert: func(i *domain.OrderItem, now time.Time) {
		stampCreated(&i.CreatedAt, now)
		// An item staged together with its order picks up the order's new ID.
		if i.Order != nil && i.Order.ID != 0 {
			i.OrderID = i.Order.ID
		}
	},
}

var reviewMapping = &entityMapping[domain.Review]{
	name:  "review",
	table: "reviews",
	columns: []string{
		"id", "rating", "comment", "user_id", "game_id", "created_at", "updated_at",
	},
	id:    func(r *domain.Review) int64 { return r.ID },
	setID: func(r *domain.Review, id int64) { r.ID = id },
	fields: func(r *domain.Review) []any {
		return []any{&r.ID, &r.Rating, &r.Comment, &r.UserID, &r.GameID, &r.CreatedAt, &r.UpdatedAt}
	},
	values: func(r *domain.Review) []any {
		return []any{r.Rating, r.Comment, r.UserID, r.GameID, r.CreatedAt, r.UpdatedAt}
	},
	onInsert: func(r *domain.Review, now time.Time) { stampCreated(&r.CreatedAt, now) },
	onUpdate: func(r *domain.Review, now time.Time) { stampUpdated(&r.UpdatedAt, now) },
}

func init() {
	genreMapping.relations = map[string]relation[domain.Genre]{
		"games": hasMany(func(g *domain.Genre) int64 { return g.ID },
			gameMapping, "genre_id", func(g *domain.Game) int64 { return g.GenreID },
			func(g *domain.Genre, games []*domain.Game) { g.Games = games }, "title"),
	}

	platformMapping.relations = map[string]relation[domain.Platform]{
		"games": hasMany(func(p *domain.Platform) int64 { return p.ID },
			gameMapping, "platform_id", func(g *domain.Game) int64 { return g.PlatformID },
			func(p *domain.Platform, games []*domain.Game) { p.Games = games }, "title"),
	}

	gameMapping.relations = map[string]relation[domain.Game]{
		"genre": belongsTo(genreMapping, func(g *domain.Game) int64 { return g.GenreID },
			func(g *domain.Game, genre *domain.Genre) { g.Genre = genre }),
		"platform": belongsTo(platformMapping, func(g *domain.Game) int64 { return g.PlatformID },
			func(g *domain.Game, platform *domain.Platform) { g.Platform = platform }),
		"reviews": hasMany(func(g *domain.Game) int64 { return g.ID },
			reviewMapping, "game_id", func(r *domain.Review) int64 { return r.GameID },
			func(g *domain.Game, reviews []*domain.Review) { g.Reviews = reviews }, "created_at DESC", "id"),
		"orderItems": hasMany(func(g *domain.Game) int64 { return g.ID },
			orderItemMapping, "game_id", func(i *domain.OrderItem) int64 { return i.GameID },
			func(g *domain.Game, items []*domain.OrderItem) { g.OrderItems = items }),
	}

	userMapping.relations = map[string]relation[domain.User]{
		"orders": hasMany(func(u *domain.User) int64 { return u.ID },
			orderMapping, "user_id", func(o *domain.Order) int64 { return o.UserID },
			func(u *domain.User, orders []*domain.Order) { u.Orders = orders }, "order_date DESC", "id DESC"),
		"reviews": hasMany(func(u *domain.User) int64 { return u.ID },
			reviewMapping, "user_id", func(r *domain.Review) int64 { return r.UserID },
			func(u *domain.User, reviews []*domain.Review) { u.Reviews = reviews }),
	}

	orderMapping.relations = map[string]relation[domain.Order]{
		"user": belongsTo(userMapping, func(o *domain.Order) int64 { return o.UserID },
			func(o *domain.Order, u *domain.User) { o.User = u }),
		"items": hasMany(func(o *domain.Order) int64 { return o.ID },
			orderItemMapping, "order_id", func(i *domain.OrderItem) int64 { return i.OrderID },
			func(o *domain.Order, items []*domain.OrderItem) { o.Items = items }),
	}

	orderItemMapping.relations = map[string]relation[domain.OrderItem]{
		"game": belongsTo(gameMapping, func(i *domain.OrderItem) int64 { return i.GameID },
			func(i *domain.OrderItem, g *domain.Game) { i.Game = g }),
		"order": belongsTo(orderMapping, func(i *domain.OrderItem) int64 { return i.OrderID },
			func(i *domain.OrderItem, o *domain.Order) { i.Order = o }),
	}

	reviewMapping.relations = map[string]relation[domain.Review]{
		"user": belongsTo(userMapping, func(r *domain.Review) int64 { return r.UserID },
			func(r *domain.Review, u *domain.User) { r.User = u }),
		"game": belongsTo(gameMapping, func(r *domain.Review) int64 { return r.GameID },
			func(r *domain.Review, g *domain.Game) { r.Game = g }),
	}
}

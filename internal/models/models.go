package models

import (
	"math"
	"time"
)

const (
	RoleFarmer = "farmer"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

const (
	OrderStatusPending = "Pending"
	OrderStatusPaid    = "Paid"
	OrderStatusFailed  = "Failed"
)

const (
	ConsultationPending  = "Pending"
	ConsultationResolved = "Resolved"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:farmer"  json:"role"`
	Profession   string    `json:"profession"`
	Expertise    string    `json:"expertise"`
	IsVerified   bool      `gorm:"default:false"            json:"is_verified"`
	JoinDate     time.Time `gorm:"autoCreateTime"           json:"join_date"`
}

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) IsExpert() bool { return u.Role == RoleExpert }

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Blog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string `gorm:"index;not null"           json:"title"`
	Content   string `gorm:"not null"                 json:"content"`
	Image     string `json:"image"`
	UserID    uint   `gorm:"index"                    json:"user_id"`
	CreatedAt int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"index;not null"            json:"name"`
	Description string  `gorm:"not null"                  json:"description"`
	Price       float64 `gorm:"not null;default:0"        json:"price"`
	Discount    float64 `gorm:"default:0"                 json:"discount"`
	Category    string  `json:"category"`
	Stock       uint    `gorm:"not null;default:0"        json:"stock"`
	Image       string  `json:"image"`
	UserID      uint    `gorm:"index"                     json:"user_id"`
	CreatedAt   int64   `gorm:"autoCreateTime"            json:"created_at"`
}

// FinalPrice is the price after the percentage discount, rounded to
// two decimals. Order lines snapshot this value at placement time.
func (p *Product) FinalPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return math.Round(p.Price*(1-p.Discount/100)*100) / 100
}

func (p *Product) InStock() bool { return p.Stock > 0 }

func (p *Product) StockStatus() string {
	switch {
	case p.Stock > 10:
		return "In Stock"
	case p.Stock >= 1:
		return "Limited Stock"
	default:
		return "Out of Stock"
	}
}

type CartItem struct {
	ID        uint  `gorm:"primaryKey"                            json:"id"`
	UserID    uint  `gorm:"uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID uint  `gorm:"uniqueIndex:idx_user_product;not null" json:"product_id"`
	Quantity  uint  `gorm:"default:1;check:quantity>0"            json:"quantity"`
	AddedAt   int64 `gorm:"autoCreateTime"                        json:"added_at"`
}

type Order struct {
	ID          uint    `gorm:"primaryKey"     json:"id"`
	UserID      uint    `gorm:"index;not null" json:"user_id"`
	TotalAmount float64 `gorm:"not null"       json:"total_amount"`
	Status      string  `gorm:"not null"       json:"status"`
	CreatedAt   int64   `gorm:"autoCreateTime" json:"created_at"`
}

type OrderItem struct {
	ID        uint `gorm:"primaryKey"                  json:"id"`
	OrderID   uint `gorm:"index;not null"              json:"order_id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
	// Price is the product's final price captured at order time,
	// never recomputed from the catalog afterwards.
	Price float64 `gorm:"not null" json:"price"`
}

func (i *OrderItem) Total() float64 { return float64(i.Quantity) * i.Price }

type Expert struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"not null"                 json:"name"`
	Email           string `gorm:"unique;not null"          json:"email"`
	Phone           string `json:"phone"`
	Education       string `json:"education"`
	Specialization  string `json:"specialization"`
	ExperienceYears int    `gorm:"default:0"                json:"experience_years"`
	Bio             string `json:"bio"`
	Image           string `json:"image"`
	IsVerified      bool   `gorm:"default:false"            json:"is_verified"`
	CreatedAt       int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type ForumPost struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string `gorm:"index;not null"           json:"title"`
	Content   string `gorm:"not null"                 json:"content"`
	Image     string `json:"image"`
	UserID    uint   `gorm:"index"                    json:"user_id"`
	CreatedAt int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type ForumReply struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Content   string `gorm:"not null"                 json:"content"`
	UserID    uint   `gorm:"index"                    json:"user_id"`
	PostID    uint   `gorm:"index;not null"           json:"post_id"`
	CreatedAt int64  `gorm:"autoCreateTime"           json:"created_at"`
}

// Like points at either a forum post or a reply, never both.
type Like struct {
	ID        uint  `gorm:"primaryKey"     json:"id"`
	UserID    uint  `gorm:"index;not null" json:"user_id"`
	PostID    *uint `gorm:"index"          json:"post_id"`
	ReplyID   *uint `gorm:"index"          json:"reply_id"`
	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
}

type Consultation struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	FarmerName  string `gorm:"not null"                  json:"farmer_name"`
	FarmerEmail string `json:"farmer_email"`
	Problem     string `gorm:"not null"                  json:"problem"`
	Response    string `json:"response"`
	ExpertID    *uint  `gorm:"index"                     json:"expert_id"`
	Status      string `gorm:"not null;default:Pending"  json:"status"`
	CreatedAt   int64  `gorm:"autoCreateTime"            json:"created_at"`
	UpdatedAt   int64  `gorm:"autoUpdateTime"            json:"updated_at"`
}

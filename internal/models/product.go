package models

import "time"

// ProductImage is one gallery image of a product.
type ProductImage struct {
	URL     string `json:"url" validate:"required"`
	AltText string `json:"altText"`
}

// Dimensions of the shipped item.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Product represents a catalog entry.
type Product struct {
	ID            string         `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name          string         `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Description   string         `json:"description" gorm:"type:text;not null" validate:"required"`
	Price         float64        `json:"price" gorm:"not null;index" validate:"gte=0"`
	DiscountPrice float64        `json:"discountPrice" validate:"gte=0"`
	CountInStock  int            `json:"countInStock" gorm:"not null;default:0" validate:"gte=0"`
	SKU           string         `json:"sku" gorm:"uniqueIndex;type:varchar(64);not null" validate:"required"`
	Category      string         `json:"category" gorm:"type:varchar(100);index" validate:"required"`
	Brand         string         `json:"brand" gorm:"type:varchar(100);index"`
	Sizes         []string       `json:"sizes" gorm:"type:text;serializer:json"`
	Colors        []string       `json:"colors" gorm:"type:text;serializer:json"`
	Collections   string         `json:"collections" gorm:"type:varchar(100);index"`
	Material      string         `json:"material" gorm:"type:varchar(100);index"`
	Gender        string         `json:"gender" gorm:"type:varchar(20);index" validate:"omitempty,oneof=Men Women Unisex"`
	Images        []ProductImage `json:"images" gorm:"type:text;serializer:json" validate:"dive"`
	IsFeatured    bool           `json:"isFeatured"`
	IsPublished   bool           `json:"isPublished"`
	Rating        float64        `json:"rating" gorm:"index" validate:"gte=0,lte=5"`
	NumReviews    int            `json:"numReviews" validate:"gte=0"`
	Tags          []string       `json:"tags" gorm:"type:text;serializer:json"`
	UserID        string         `json:"user" gorm:"type:varchar(36);index"`
	Dimensions    *Dimensions    `json:"dimensions,omitempty" gorm:"type:text;serializer:json"`
	Weight        float64        `json:"weight" validate:"gte=0"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Clone returns a deep copy so stored products never share slices with callers.
func (p Product) Clone() Product {
	p.Sizes = cloneStrings(p.Sizes)
	p.Colors = cloneStrings(p.Colors)
	p.Tags = cloneStrings(p.Tags)
	if p.Images != nil {
		images := make([]ProductImage, len(p.Images))
		copy(images, p.Images)
		p.Images = images
	}
	if p.Dimensions != nil {
		d := *p.Dimensions
		p.Dimensions = &d
	}
	return p
}

// ProductUpdate is a partial update. A nil field leaves the stored value
// untouched; a non-nil field overwrites it, including explicit false or zero.
type ProductUpdate struct {
	Name          *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string         `json:"description" validate:"omitempty,min=1"`
	Price         *float64        `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64        `json:"discountPrice" validate:"omitempty,gte=0"`
	CountInStock  *int            `json:"countInStock" validate:"omitempty,gte=0"`
	SKU           *string         `json:"sku" validate:"omitempty,min=1"`
	Category      *string         `json:"category"`
	Brand         *string         `json:"brand"`
	Sizes         *[]string       `json:"sizes"`
	Colors        *[]string       `json:"colors"`
	Collections   *string         `json:"collections"`
	Material      *string         `json:"material"`
	Gender        *string         `json:"gender" validate:"omitempty,oneof=Men Women Unisex"`
	Images        *[]ProductImage `json:"images"`
	IsFeatured    *bool           `json:"isFeatured"`
	IsPublished   *bool           `json:"isPublished"`
	Tags          *[]string       `json:"tags"`
	Dimensions    *Dimensions     `json:"dimensions"`
	Weight        *float64        `json:"weight" validate:"omitempty,gte=0"`
}

// Apply copies every present field onto p.
func (u ProductUpdate) Apply(p *Product) {
	setIf(&p.Name, u.Name)
	setIf(&p.Description, u.Description)
	setIf(&p.Price, u.Price)
	setIf(&p.DiscountPrice, u.DiscountPrice)
	setIf(&p.CountInStock, u.CountInStock)
	setIf(&p.SKU, u.SKU)
	setIf(&p.Category, u.Category)
	setIf(&p.Brand, u.Brand)
	setIf(&p.Collections, u.Collections)
	setIf(&p.Material, u.Material)
	setIf(&p.Gender, u.Gender)
	setIf(&p.IsFeatured, u.IsFeatured)
	setIf(&p.IsPublished, u.IsPublished)
	setIf(&p.Weight, u.Weight)
	if u.Sizes != nil {
		p.Sizes = cloneStrings(*u.Sizes)
	}
	if u.Colors != nil {
		p.Colors = cloneStrings(*u.Colors)
	}
	if u.Tags != nil {
		p.Tags = cloneStrings(*u.Tags)
	}
	if u.Images != nil {
		p.Images = append([]ProductImage(nil), (*u.Images)...)
	}
	if u.Dimensions != nil {
		d := *u.Dimensions
		p.Dimensions = &d
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

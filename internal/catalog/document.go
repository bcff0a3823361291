package catalog

// Document is the serialized form of a catalog. Viper unmarshals YAML, JSON and TOML
// catalogs into this struct and the delimited reader fills it from CSV files.
type Document struct {
	PreferenceTags []TagDoc                `mapstructure:"preference_tags" validate:"unique=ID,dive"`
	ProductTags    []TagDoc                `mapstructure:"product_tags" validate:"unique=ID,dive"`
	Categories     []PreferenceCategoryDoc `mapstructure:"preference_categories" validate:"unique=ID,dive"`
	Preferences    []PreferenceDoc         `mapstructure:"preferences" validate:"unique=ID,dive"`
	Products       []ProductDoc            `mapstructure:"products" validate:"unique=ID,dive"`
	Associations   []AssociationDoc        `mapstructure:"associations" validate:"dive"`
	Users          []UserDoc               `mapstructure:"users" validate:"unique=ID,dive"`
}

// TagDoc describes a preference or product tag.
type TagDoc struct {
	ID         int64  `mapstructure:"id" validate:"gte=0"`
	Name       string `mapstructure:"name" validate:"required"`
	VersionIn  int    `mapstructure:"version_in" validate:"gte=0"`
	VersionOut int    `mapstructure:"version_out" validate:"gte=0"`
}

// PreferenceCategoryDoc describes a preference category.
type PreferenceCategoryDoc struct {
	ID   int64  `mapstructure:"id" validate:"gte=0"`
	Name string `mapstructure:"name" validate:"required"`
}

// PreferenceDoc describes a preference and the preference tags it is made of.
type PreferenceDoc struct {
	ID          int64   `mapstructure:"id" validate:"gte=0"`
	Name        string  `mapstructure:"name" validate:"required"`
	Translation string  `mapstructure:"translation"`
	Category    *int64  `mapstructure:"category"`
	VersionIn   int     `mapstructure:"version_in" validate:"gte=0"`
	VersionOut  int     `mapstructure:"version_out" validate:"gte=0"`
	Tags        []int64 `mapstructure:"tags" validate:"min=1"`
}

// ProductCategoryDoc places a product in a category tree.
type ProductCategoryDoc struct {
	Name  string `mapstructure:"name" validate:"required"`
	Level int    `mapstructure:"level" validate:"gte=0"`
}

// ProductDoc describes a product and its product tags.
type ProductDoc struct {
	ID          int64                `mapstructure:"id" validate:"gte=0"`
	EAN         string               `mapstructure:"ean"`
	Name        string               `mapstructure:"name"`
	Brand       string               `mapstructure:"brand"`
	Ingredients string               `mapstructure:"ingredients"`
	Description string               `mapstructure:"description"`
	Categories  []ProductCategoryDoc `mapstructure:"categories" validate:"dive"`
	Tags        []int64              `mapstructure:"tags"`
}

// AssociationDoc links a preference tag to a product tag.
type AssociationDoc struct {
	PreferenceTag int64   `mapstructure:"preference_tag"`
	ProductTag    int64   `mapstructure:"product_tag"`
	Value         float64 `mapstructure:"value"`
}

// UserDoc describes a user with scored preferences and an optional purchase history.
type UserDoc struct {
	ID          string              `mapstructure:"id" validate:"required"`
	Name        string              `mapstructure:"name"`
	Preferences []UserPreferenceDoc `mapstructure:"preferences" validate:"dive"`
	History     []PurchaseDoc       `mapstructure:"history" validate:"dive"`
}

// UserPreferenceDoc is one scored preference of a user.
type UserPreferenceDoc struct {
	Preference int64   `mapstructure:"preference"`
	Score      float64 `mapstructure:"score" validate:"gte=0"`
}

// PurchaseDoc is one purchased product quantity.
type PurchaseDoc struct {
	Product  int64   `mapstructure:"product"`
	Quantity float64 `mapstructure:"quantity" validate:"gt=0"`
}

package category

// ExpenseCategory is read-mostly reference data. MaxAmount of zero means no
// ceiling; RequiresClient is advisory for the submit form since every expense
// carries a client anyway.
type ExpenseCategory struct {
	ID             int64   `json:"id" gorm:"primaryKey"`
	Name           string  `json:"name" gorm:"not null"`
	RequiresClient bool    `json:"requires_client" gorm:"column:requires_client;default:false"`
	MaxAmount      float64 `json:"max_amount" gorm:"column:max_amount"`
	IsActive       bool    `json:"is_active" gorm:"column:is_active;default:true"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

func (c *ExpenseCategory) HasCeiling() bool {
	return c.MaxAmount > 0
}

type CategoryResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	RequiresClient bool     `json:"requires_client"`
	MaxAmount      *float64 `json:"max_amount,omitempty"`
}

func (c *ExpenseCategory) ToResponse() CategoryResponse {
	resp := CategoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		RequiresClient: c.RequiresClient,
	}
	if c.HasCeiling() {
		max := c.MaxAmount
		resp.MaxAmount = &max
	}
	return resp
}

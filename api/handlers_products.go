package api

import (
	"fmt"
	"net/http"

	"storefront/db"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// --- List Products ---

// GetProductsHandler returns the catalog, optionally filtered.
// @Summary      List Products
// @Description  Returns every product in the catalog in insertion order.
// @Description
// @Description  With `q`, only products whose name, description or category contains the term (case-insensitive) are returned.
// @Tags         Products
// @Produce      json
// @Param        q    query     string  false  "Case-insensitive search term." example(coffee)
// @Success      200  {array}   models.Product
// @Router       /api/products [get]
func GetProductsHandler(c *gin.Context, catalog *db.CatalogStore) {
	if term := c.Query("q"); term != "" {
		c.JSON(http.StatusOK, catalog.Search(term))
		return
	}
	c.JSON(http.StatusOK, catalog.List())
}

// GetProductHandler returns a single product.
// @Summary      Get a Product
// @Tags         Products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  models.Product
// @Failure      400  {object}  utils.APIError "The id is not an integer."
// @Failure      404  {object}  utils.APIError "No product has this id."
// @Router       /api/products/{id} [get]
func GetProductHandler(c *gin.Context, catalog *db.CatalogStore) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, found := catalog.Get(id)
	if !found {
		utils.GinNotFound(c, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- Create Product ---

// CreateProductRequest defines the expected body for creating a product.
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    string   `json:"category" binding:"required,category"`
}

// CreateProductHandler adds a product to the catalog.
// @Summary      Create a Product
// @Description  Adds a product to the catalog. The server assigns the numeric `id` from the current time.
// @Description  Every connected real-time client receives a `productAdded` event with the new record.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product body CreateProductRequest true "The product to add."
// @Success      201  {object}  models.Product
// @Failure      400  {object}  utils.APIError "Missing name, negative price or unknown category."
// @Failure      401  {object}  utils.APIError "Missing or invalid admin token."
// @Failure      403  {object}  utils.APIError "The token is not an admin token."
// @Failure      500  {object}  utils.APIError "The catalog could not be saved."
// @Router       /api/products [post]
func CreateProductHandler(c *gin.Context, catalog *db.CatalogStore) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, utils.DescribeBindError(err))
		return
	}

	product, err := catalog.Create(db.ProductInput{
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		respondStoreError(c, err, "Product not found", "create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// --- Update Product ---

// UpdateProductRequest documents the accepted fields. Every field is
// optional; fields left out keep their current value.
type UpdateProductRequest struct {
	Name        string  `json:"name,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// UpdateProductHandler merges the request body into an existing product.
// @Summary      Update a Product
// @Description  Merges the fields present in the body into the product. Fields that are absent keep their current value; the `id` never changes.
// @Description  Every connected real-time client receives a `productUpdated` event with the merged record.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int                   true  "Product ID"
// @Param        product body  UpdateProductRequest  true  "Fields to change."
// @Success      200  {object}  models.Product
// @Failure      400  {object}  utils.APIError "Malformed JSON, a field of the wrong type, or an invalid value."
// @Failure      401  {object}  utils.APIError "Missing or invalid admin token."
// @Failure      404  {object}  utils.APIError "No product has this id."
// @Router       /api/products/{id} [put]
func UpdateProductHandler(c *gin.Context, catalog *db.CatalogStore) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Could not read request body: %v", err))
		return
	}
	patch, err := parseProductPatch(body)
	if err != nil {
		utils.GinBadRequest(c, err.Error())
		return
	}

	product, err := catalog.Update(id, patch)
	if err != nil {
		respondStoreError(c, err, "Product not found", "update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// parseProductPatch reads the fields present in a JSON object. Only the
// presence of a key matters, so a client can set a field to "" or 0.
func parseProductPatch(body []byte) (db.ProductPatch, error) {
	var patch db.ProductPatch
	if !gjson.ValidBytes(body) {
		return patch, fmt.Errorf("Invalid request body: not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return patch, fmt.Errorf("Invalid request body: expected a JSON object")
	}

	var err error
	if patch.Name, err = optionalString(doc, "name"); err != nil {
		return patch, err
	}
	if patch.Description, err = optionalString(doc, "description"); err != nil {
		return patch, err
	}
	if patch.Image, err = optionalString(doc, "image"); err != nil {
		return patch, err
	}
	if patch.Category, err = optionalString(doc, "category"); err != nil {
		return patch, err
	}
	if price := doc.Get("price"); price.Exists() {
		if price.Type != gjson.Number {
			return patch, fmt.Errorf("Invalid request body: price must be a number")
		}
		v := price.Float()
		patch.Price = &v
	}
	return patch, nil
}

func optionalString(doc gjson.Result, key string) (*string, error) {
	field := doc.Get(key)
	if !field.Exists() {
		return nil, nil
	}
	if field.Type != gjson.String {
		return nil, fmt.Errorf("Invalid request body: %s must be a string", key)
	}
	v := field.String()
	return &v, nil
}

// --- Delete Product ---

// DeleteProductHandler removes a product from the catalog.
// @Summary      Delete a Product
// @Description  Removes the product and returns the deleted record.
// @Description  Every connected real-time client receives a `productDeleted` event carrying only the id.
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  models.Product "The product that was removed."
// @Failure      400  {object}  utils.APIError "The id is not an integer."
// @Failure      401  {object}  utils.APIError "Missing or invalid admin token."
// @Failure      404  {object}  utils.APIError "No product has this id; the catalog is unchanged."
// @Router       /api/products/{id} [delete]
func DeleteProductHandler(c *gin.Context, catalog *db.CatalogStore) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := catalog.Delete(id)
	if err != nil {
		respondStoreError(c, err, "Product not found", "delete product")
		return
	}

	c.JSON(http.StatusOK, deleted)
}

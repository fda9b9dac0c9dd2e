package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.pilab.hu/mcportal/dto"
	apierrors "go.pilab.hu/mcportal/errors"
	"go.pilab.hu/mcportal/services"
)

// ListItemsHandler returns the items currently in stock.
func (a *PortalAPI) ListItemsHandler(c echo.Context) error {
	items, err := a.shop.ListItems(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// AdminListItemsHandler returns the full catalog including items out of stock.
func (a *PortalAPI) AdminListItemsHandler(c echo.Context) error {
	items, err := a.shop.ListItems(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (a *PortalAPI) GetItemHandler(c echo.Context) error {
	item, err := a.shop.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func bindItem(c echo.Context) (services.ShopItemInput, error) {
	var req dto.ShopItemRequest
	if err := c.Bind(&req); err != nil {
		return services.ShopItemInput{}, apierrors.NewBadRequest("Invalid request body")
	}
	return services.ShopItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.PriceOrZero(),
		Category:    req.Category,
		InStock:     req.InStockOrDefault(),
	}, nil
}

func (a *PortalAPI) CreateItemHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	in, err := bindItem(c)
	if err != nil {
		return err
	}

	item, err := a.shop.CreateItem(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (a *PortalAPI) UpdateItemHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	in, err := bindItem(c)
	if err != nil {
		return err
	}

	item, err := a.shop.UpdateItem(c.Request().Context(), caller, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (a *PortalAPI) DeleteItemHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := a.shop.DeleteItem(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Item deleted successfully"})
}

// PurchaseHandler records a pending purchase for the caller.
func (a *PortalAPI) PurchaseHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	purchase, err := a.shop.Purchase(c.Request().Context(), caller, c.Param("item_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, purchase)
}

func (a *PortalAPI) MyPurchasesHandler(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	purchases, err := a.shop.UserPurchases(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purchases)
}

func (a *PortalAPI) AdminListPurchasesHandler(c echo.Context) error {
	purchases, err := a.shop.AllPurchases(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purchases)
}

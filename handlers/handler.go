package handlers

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"pizza-delivery-api/cart"
	"pizza-delivery-api/dispatch"
	"pizza-delivery-api/geo"
	"pizza-delivery-api/location"
	"pizza-delivery-api/menu"
	"pizza-delivery-api/notification"
	"pizza-delivery-api/order"
	"pizza-delivery-api/payment"
	"pizza-delivery-api/pricing"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"
	"pizza-delivery-api/statemachine"
	"pizza-delivery-api/tracking"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report fields by their json or form name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	}
}

// Handler serves the HTTP API on top of the domain services.
type Handler struct {
	Users         repository.UserRepository
	Menu          *menu.Service
	Locations     *location.Service
	Promos        *promo.Service
	Carts         *cart.Service
	Orders        *order.Service
	Payments      *payment.Service
	Drivers       *dispatch.Service
	Notifications *notification.Service
	JWTSecret     []byte
}

// respondError maps domain errors onto status codes. Anything unknown is a 500.
func respondError(c *gin.Context, err error) {
	var (
		pe  *promo.Error
		oce *pricing.OutsideCoverageError
		moe *order.MinimumOrderError
		pve *repository.ProviderError
	)
	switch {
	case errors.As(err, &oce):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": "outside_coverage"})
	case errors.As(err, &moe):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         err.Error(),
			"reason":        "minimum_order_not_met",
			"minimum_order": moe.Minimum,
			"subtotal":      moe.Subtotal,
		})
	case errors.As(err, &pe):
		status := http.StatusBadRequest
		if pe.Kind == promo.KindNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": pe.Error(), "reason": pe.Kind, "code": pe.Code})
	case errors.As(err, &pve):
		log.Printf("⚠️  %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, location.ErrAreaNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, tracking.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrForbidden):
		// do not reveal other customers' orders
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, statemachine.ErrInvalidTransition),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, order.ErrNotOnDelivery),
		errors.Is(err, order.ErrAssignedElsewhere),
		errors.Is(err, dispatch.ErrDriverBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, location.ErrEmptyQuery),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, order.ErrAddressMissing),
		errors.Is(err, payment.ErrInvalidStatus),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, tracking.ErrInvalidState),
		errors.Is(err, menu.ErrEmptyQuery),
		errors.Is(err, dispatch.ErrInvalidRadius),
		errors.Is(err, order.ErrInvalidPeriod),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, notification.ErrInvalidType),
		errors.Is(err, notification.ErrInvalidTimezone):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindError reports a request that failed binding. Validation failures list
// the offending fields by their json or form name.
func bindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fieldName(fe)] = rule
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "fields": fields})
}

// fieldName drops the struct name from a namespace such as
// "CheckoutRequest.location.lat".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// pointQuery binds ?lat=&lng= query parameters.
type pointQuery struct {
	Lat *float64 `form:"lat" binding:"required,latitude"`
	Lng *float64 `form:"lng" binding:"required,longitude"`
}

package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"kase/internal/app/dto"
	listingsapp "kase/internal/app/handlers/listings"
	"kase/internal/app/policies"
	"kase/internal/app/queries"
	domainlistings "kase/internal/domain/listings"
)

type ListingHandler struct {
	Queries queries.Bus
	Prefs   policies.PreferencesPort
}

func (h ListingHandler) Catalog(c *gin.Context) {
	params, err := parseSearchParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := listingsapp.SearchCatalogQuery{Params: params}
	result, err := queries.Ask[listingsapp.SearchCatalogQuery, *listingsapp.SearchCatalogResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	page := dto.ListingPage{
		Items: make([]dto.ListingSummary, 0, len(result.Items)),
		Total: result.Total,
	}
	for _, item := range result.Items {
		page.Items = append(page.Items, dto.MapListingSummary(item, h.formatPrice(item)))
	}
	c.JSON(http.StatusOK, page)
}

func (h ListingHandler) Get(c *gin.Context) {
	query := listingsapp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingsapp.GetListingQuery, *listingsapp.GetListingResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(result.Listing, h.formatPrice(result.Listing)))
}

func (h ListingHandler) formatPrice(l *domainlistings.Listing) string {
	if h.Prefs == nil || l == nil {
		return ""
	}
	return h.Prefs.FormatPrice(l.UnitPrice)
}

func parseSearchParams(c *gin.Context) (domainlistings.SearchParams, error) {
	params := domainlistings.SearchParams{
		City:    c.Query("city"),
		Country: c.Query("country"),
		Query:   c.Query("q"),
		Sort:    domainlistings.CatalogSort(c.Query("sort")),
	}
	for _, raw := range strings.Split(c.Query("kind"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		kind, err := domainlistings.ParseKind(raw)
		if err != nil {
			return domainlistings.SearchParams{}, err
		}
		params.Kinds = append(params.Kinds, kind)
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				params.Tags = append(params.Tags, trimmed)
			}
		}
	}
	var err error
	if params.MinGuests, err = intQuery(c, "guests"); err != nil {
		return domainlistings.SearchParams{}, err
	}
	if params.PriceMin, err = int64Query(c, "price_min"); err != nil {
		return domainlistings.SearchParams{}, err
	}
	if params.PriceMax, err = int64Query(c, "price_max"); err != nil {
		return domainlistings.SearchParams{}, err
	}
	if params.Limit, err = intQuery(c, "limit"); err != nil {
		return domainlistings.SearchParams{}, err
	}
	if params.Offset, err = intQuery(c, "offset"); err != nil {
		return domainlistings.SearchParams{}, err
	}
	return params, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func int64Query(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

var _ ListingHTTP = ListingHandler{}

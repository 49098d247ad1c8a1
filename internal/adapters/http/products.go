package httpadapter

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/termlens/internal/core/domain"
)

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	var category *string
	if err := runtime.BindQueryParameter("form", true, false, "category", r.URL.Query(), &category); err != nil {
		writeError(w, http.StatusBadRequest, "invalid category parameter")
		return
	}

	var filter domain.ProductCategory
	if category != nil {
		filter = domain.ProductCategory(*category)
		if !filter.Known() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", *category))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": rt.svc.Catalog.Products(filter)})
}

func (rt *Router) getProduct(w http.ResponseWriter, r *http.Request) {
	var slug string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "slug", runtime.ParamLocationPath, chi.URLParam(r, "slug"), &slug); err != nil {
		writeError(w, http.StatusBadRequest, "invalid slug parameter")
		return
	}

	product, ok := rt.svc.Catalog.Product(slug)
	if !ok {
		writeDomainError(w, domain.WrapError(domain.ErrProductNotFound, "get product", fmt.Errorf("slug %q", slug)))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

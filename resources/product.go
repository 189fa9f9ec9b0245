package resources

import "github.com/glennmatthews/cot/ovf"

// EditProductRequest carries the fields "edit product" may update; a nil
// field leaves the corresponding ProductSection field untouched (spec.md
// section 4.4: "set product, vendor, short-version, full-version,
// product-class").
type EditProductRequest struct {
	Product      *string
	Vendor       *string
	Version      *string
	FullVersion  *string
	ProductClass *string
}

// EditProduct applies req to ps. ProductClass maps onto the
// ProductSection's ovf:class attribute.
func EditProduct(ps *ovf.ProductSection, req EditProductRequest) {
	if req.Product != nil {
		ps.SetProduct(*req.Product)
	}
	if req.Vendor != nil {
		ps.SetVendor(*req.Vendor)
	}
	if req.Version != nil {
		ps.SetVersion(*req.Version)
	}
	if req.FullVersion != nil {
		ps.SetFullVersion(*req.FullVersion)
	}
	if req.ProductClass != nil {
		ps.SetClass(*req.ProductClass)
	}
}

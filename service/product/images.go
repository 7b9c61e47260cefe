package product

import (
	"sort"

	"storefront.GO/core/apperror"
	productEntity "storefront.GO/model/entity/product"
)

// Normalize returns a copy of images stably sorted by Order and renumbered
// 0..n-1.
func Normalize(images []productEntity.Image) []productEntity.Image {
	out := make([]productEntity.Image, len(images))
	copy(out, images)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		out[i].Order = i
	}
	return out
}

// AddImages appends urls after the current highest order and renumbers.
func AddImages(images []productEntity.Image, urls []string) []productEntity.Image {
	next := 0
	for _, img := range images {
		if img.Order >= next {
			next = img.Order + 1
		}
	}
	out := make([]productEntity.Image, 0, len(images)+len(urls))
	out = append(out, images...)
	for i, u := range urls {
		out = append(out, productEntity.Image{URL: u, Order: next + i})
	}
	return Normalize(out)
}

// Reorder returns the images named by urls in that order. Every url must
// belong to images and appear once; images not named are dropped.
func Reorder(productID uint, images []productEntity.Image, urls []string) ([]productEntity.Image, error) {
	if len(urls) == 0 {
		return nil, apperror.InvalidOperation("product", productID, "reorder needs at least one image url")
	}
	known := make(map[string]bool, len(images))
	for _, img := range images {
		known[img.URL] = true
	}
	seen := make(map[string]bool, len(urls))
	out := make([]productEntity.Image, len(urls))
	for i, u := range urls {
		if !known[u] {
			return nil, apperror.InvalidOperation("product", productID, "image %q does not belong to the product", u)
		}
		if seen[u] {
			return nil, apperror.InvalidOperation("product", productID, "image %q listed twice", u)
		}
		seen[u] = true
		out[i] = productEntity.Image{URL: u, Order: i}
	}
	return out, nil
}

// OrdersContiguous reports whether the orders of images are exactly 0..n-1
// in list order.
func OrdersContiguous(images []productEntity.Image) bool {
	for i, img := range images {
		if img.Order != i {
			return false
		}
	}
	return true
}

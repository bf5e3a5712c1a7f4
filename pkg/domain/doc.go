// Package domain contains the ShopTogether entities: products, users, families
// and orders. The types are free of infrastructure concerns and shared by the
// services, the storage backends and the HTTP layer.
package domain

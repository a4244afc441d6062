package multiclient

import "github.com/zephyrnaut/euphoxide-go/client"

// ClientBuilder fluently assembles a child Client's Config, then adds it to
// the MultiClient it was obtained from.
type ClientBuilder[K comparable] struct {
	mc    *MultiClient[K]
	key   K
	inner client.Builder
}

func (b ClientBuilder[K]) WithUsername(username string) ClientBuilder[K] {
	b.inner = b.inner.WithUsername(username)
	return b
}

func (b ClientBuilder[K]) WithForceUsername(force bool) ClientBuilder[K] {
	b.inner = b.inner.WithForceUsername(force)
	return b
}

func (b ClientBuilder[K]) WithPassword(password string) ClientBuilder[K] {
	b.inner = b.inner.WithPassword(password)
	return b
}

func (b ClientBuilder[K]) WithHuman(human bool) ClientBuilder[K] {
	b.inner = b.inner.WithHuman(human)
	return b
}

// Add adds the assembled Config to the owning MultiClient under this
// builder's key; see MultiClient.AddClient for idempotence semantics.
func (b ClientBuilder[K]) Add() (*client.Client, bool) {
	return b.mc.AddClient(b.key, b.inner.Config())
}

package engines

import "github.com/r3e-network/metasearch/internal/search"

// All returns one instance of every adapter in the roster: the Bing, Baidu,
// Yandex and 360 general engines, then the Bing verticals, then Sogou
// (general) and its verticals, then Bilibili and Unsplash.
func All() []search.Adapter {
	return []search.Adapter{
		NewBingEngine(),
		NewBaiduEngine(),
		NewYandexEngine(),
		NewSoEngine(),
		NewBingImagesEngine(),
		NewBingNewsEngine(),
		NewBingVideosEngine(),
		NewSogouEngine(),
		NewSogouImagesEngine(),
		NewSogouVideosEngine(),
		NewSogouWeChatEngine(),
		NewBilibiliEngine(),
		NewUnsplashEngine(),
	}
}

package vision

// LabelMap maps detection model class names to canonical food names in the
// FOOD_NUTRITION store. Labels without an entry are intentionally absent and
// are silently dropped by the resolver, not treated as errors.
// Initialized once at process start; never mutated.
var LabelMap = map[string]string{
	"rice":          "쌀밥",
	"kimchi":        "배추김치",
	"kimchi_stew":   "김치찌개",
	"bulgogi":       "소불고기",
	"bibimbap":      "비빔밥",
	"tteokbokki":    "떡볶이",
	"ramen":         "라면",
	"fried_chicken": "후라이드치킨",
	"samgyeopsal":   "삼겹살구이",
	"gimbap":        "김밥",
	"doenjang_stew": "된장찌개",
	"japchae":       "잡채",
	"mandu":         "만두",
	"fried_rice":    "볶음밥",
	"egg_roll":      "계란말이",
	"salad":         "샐러드",
	"apple":         "사과",
	"banana":        "바나나",
	"milk":          "우유",
	"yogurt":        "요거트",
}

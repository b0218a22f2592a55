package mentions

import "regexp"

// family is one dish-name pattern with its category label. The
// families live here as data, not inline in the scan loop, so they can
// be extended and tested without touching the extraction logic.
type family struct {
	re       *regexp.Regexp
	category string
}

const nameWord = `[A-Za-z][A-Za-z'-]*`

// dishFamilies match named dishes in free text. Each family captures
// the full dish phrase in group 1; generic bare category words and
// captures containing function words are rejected afterwards by accept.
var dishFamilies = []family{
	// "margherita pizza", "brick oven pizza"
	{regexp.MustCompile(`(?i)\b(` + nameWord + `(?:[ -]` + nameWord + `){0,2}[ -]pizza)\b`), "pizza"},
	// "penne alla vodka", "spaghetti carbonara", "lobster ravioli"
	{regexp.MustCompile(`(?i)\b((?:` + nameWord + `[ -])?(?:spaghetti|penne|rigatoni|linguine|fettuccine|lasagna|gnocchi|ravioli|orecchiette|tortellini|risotto)(?:[ -]` + nameWord + `){0,3})\b`), "pasta"},
	// "chicken parm sandwich", "italian sub", "lobster roll"
	{regexp.MustCompile(`(?i)\b(` + nameWord + `(?:[ -]` + nameWord + `){0,2}[ -](?:sandwich|sub|panini|burger|roll|wrap))\b`), "sandwich"},
	// "caesar salad", "french onion soup", "buffalo wings", "fried calamari"
	{regexp.MustCompile(`(?i)\b(` + nameWord + `(?:[ -]` + nameWord + `){0,2}[ -](?:salad|soup|wings|calamari|bruschetta|dumplings))\b`), "appetizer"},
	// "pan seared scallops", "grilled branzino", "ribeye steak"
	{regexp.MustCompile(`(?i)\b((?:pan[ -]seared|seared|grilled|braised|roasted|blackened)[ -]` + nameWord + `(?:[ -]` + nameWord + `){0,2})\b`), "protein"},
	{regexp.MustCompile(`(?i)\b(` + nameWord + `(?:[ -]` + nameWord + `){0,1}[ -](?:steak|ribeye|filet|porterhouse))\b`), "protein"},
	// "chocolate lava cake", "key lime pie", "ricotta cheesecake"
	{regexp.MustCompile(`(?i)\b(` + nameWord + `(?:[ -]` + nameWord + `){0,2}[ -](?:cake|pie|cheesecake|gelato|cannoli|tiramisu|brownie))\b`), "dessert"},
}

// imperativeRe matches "try/recommend/order/get/must have/don't miss/
// best [the] <Capitalized Phrase>". The phrase must start capitalized;
// later words may be capitalized or connectors.
var imperativeRe = regexp.MustCompile(
	`\b(?i:must[ -]have|don'?t miss|try|recommend|order|get|best)\s+(?:(?i:the)\s+)?` +
		`([A-Z][A-Za-z'-]*(?:\s+(?:[A-Z][A-Za-z'-]*|and|with|in|on|of|e|alla|al|di))*)`)

// genericTerms are bare category words that are not dish names on
// their own. A review saying just "pizza" recommends nothing.
var genericTerms = map[string]bool{
	"pizza": true, "pasta": true, "salad": true, "soup": true,
	"sandwich": true, "sub": true, "burger": true, "roll": true,
	"wrap": true, "steak": true, "wings": true, "cake": true,
	"pie": true, "dessert": true, "appetizer": true, "entree": true,
	"food": true, "menu": true, "dish": true, "meal": true,
	"lunch": true, "dinner": true, "place": true, "restaurant": true,
}

// functionWords inside a captured phrase indicate the regexp grabbed
// sentence fragments rather than a dish name.
var functionWords = map[string]bool{
	"was": true, "were": true, "is": true, "are": true, "be": true,
	"been": true, "the": true, "this": true, "that": true, "it": true,
	"my": true, "our": true, "your": true, "their": true, "had": true,
	"has": true, "have": true, "very": true, "really": true,
	"quite": true, "too": true, "so": true, "not": true, "here": true,
	"there": true, "another": true, "some": true, "more": true,
}

// captureJunk words are trimmed off the front of family captures:
// verbs and opinion qualifiers that precede a dish name without being
// part of it ("loved the margherita pizza", "nice salad").
var captureJunk = map[string]bool{
	"try": true, "tried": true, "order": true, "ordered": true,
	"get": true, "got": true, "recommend": true, "love": true,
	"loved": true, "like": true, "liked": true, "enjoy": true,
	"enjoyed": true, "eat": true, "ate": true, "share": true,
	"shared": true, "good": true, "great": true, "nice": true,
	"best": true, "awesome": true, "amazing": true, "delicious": true,
	"excellent": true, "fantastic": true, "incredible": true,
	"tasty": true, "wonderful": true, "outstanding": true,
	"solid": true, "decent": true, "favorite": true, "favourite": true,
}

// connectorWords stay lower-case inside a normalized dish name except
// in first position.
var connectorWords = map[string]bool{
	"and": true, "with": true, "in": true, "on": true, "the": true,
	"a": true, "an": true, "of": true, "e": true, "alla": true,
	"al": true, "di": true,
}

// knownSingleDishes are one-word dish names accepted from the
// imperative pass despite being a single word.
var knownSingleDishes = map[string]bool{
	"tiramisu": true, "carbonara": true, "lasagna": true,
	"gnocchi": true, "paella": true, "ramen": true, "pho": true,
	"cannoli": true, "calamari": true, "bruschetta": true,
	"risotto": true, "margherita": true, "cacciatore": true,
}

// descriptiveAdjectives are harvested from the context window as
// "reasons", only when the originating review rates >= 4.
var descriptiveAdjectives = []string{
	"delicious", "amazing", "excellent", "fantastic", "incredible",
	"outstanding", "wonderful", "tasty", "flavorful", "fresh",
	"perfect", "crispy", "juicy", "tender", "rich", "authentic",
	"savory", "succulent",
}

var adjectiveRe = buildAdjectiveRe()

func buildAdjectiveRe() *regexp.Regexp {
	alt := descriptiveAdjectives[0]
	for _, a := range descriptiveAdjectives[1:] {
		alt += "|" + a
	}
	return regexp.MustCompile(`(?i)\b(` + alt + `)\b`)
}

// priceRe matches "$18", "$18.50", "18 dollars", "18 bucks".
var priceRe = regexp.MustCompile(`\$\d+(?:\.\d{2})?|\b\d+\s*(?:dollars|bucks)\b`)

// portionRe matches portion-size remarks near a mention.
var portionRe = regexp.MustCompile(`(?i)\b((?:huge|large|big|generous|small|tiny|perfect)\s+portions?)\b`)

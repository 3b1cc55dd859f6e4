package scoring

// Keyword vocabularies for freetext matching. Tokens are lowercase and
// matched by substring, so Swedish, English and French spellings are all
// listed where restaurants mix languages ("rött vin från Bordeaux").

var regionTokens = []string{
	"bordeaux", "bourgogne", "burgundy", "champagne", "rhône", "rhone",
	"loire", "alsace", "provence", "languedoc", "beaujolais", "chablis",
	"toscana", "tuscany", "piemonte", "piedmont", "barolo", "barbaresco",
	"chianti", "valpolicella", "veneto", "sicilien", "sicily", "etna",
	"rioja", "ribera del duero", "priorat", "rías baixas", "rias baixas",
	"mosel", "rheingau", "pfalz", "wachau", "kamptal",
	"douro", "alentejo", "vinho verde",
	"mendoza", "maipo", "stellenbosch", "marlborough", "barossa",
	"napa", "sonoma", "willamette",
}

var countryTokens = []string{
	"frankrike", "france", "fransk", "french",
	"italien", "italy", "italia", "italiensk", "italian",
	"spanien", "spain", "españa", "spansk", "spanish",
	"tyskland", "germany", "tysk", "german",
	"portugal", "portugisisk", "portuguese",
	"österrike", "austria", "österrikisk", "austrian",
	"chile", "chilensk", "chilean",
	"argentina", "argentinsk", "argentine",
	"sydafrika", "south africa", "sydafrikansk",
	"australien", "australia", "australisk", "australian",
	"nya zeeland", "new zealand",
	"usa", "kalifornien", "california",
}

var grapeStyleTokens = []string{
	"cabernet", "merlot", "pinot noir", "pinot nero", "syrah", "shiraz",
	"grenache", "garnacha", "nebbiolo", "sangiovese", "tempranillo",
	"malbec", "carmenere", "zinfandel", "primitivo", "gamay",
	"chardonnay", "sauvignon blanc", "riesling", "chenin blanc",
	"grüner veltliner", "gruner veltliner", "albariño", "albarino",
	"viognier", "gewürztraminer", "gewurztraminer", "verdejo",
	"rött", "rött vin", "red wine", "rouge",
	"vitt", "vitt vin", "white wine", "blanc",
	"rosé", "rose wine", "rosévin",
	"mousserande", "sparkling", "pétillant", "petillant", "cava", "prosecco",
	"ekologisk", "organic", "biodynamisk", "biodynamic",
	"naturvin", "natural wine", "orange",
	"dessertvin", "dessert wine", "portvin", "port",
}

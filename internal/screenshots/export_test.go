package screenshots

// PublicAssetPath exposes publicAssetPath for tests.
var PublicAssetPath = publicAssetPath

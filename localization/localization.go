package localization

import (
	"encoding/json"
	"os"
	"path"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/readium/readium-shelf-server/config"
)

var matcher language.Matcher

//InitTranslations loads the translation files listed in the config file,
//one json file per language, named after the language tag.
//need to run in main.go in server
//err!=nil  means that one of them can't be opened
func InitTranslations() error {
	acceptableLanguages := config.Config.Localization.Languages
	localizationPath := config.Config.Localization.Folder
	defaultLanguage := config.Config.Localization.DefaultLanguage

	// the first tag handed to the matcher is the fallback
	tags := []language.Tag{language.Make(defaultLanguage)}

	var err error
	for _, value := range acceptableLanguages {
		tag := language.Make(value)

		var data []byte
		data, err = os.ReadFile(path.Join(localizationPath, value+".json"))
		if err != nil {
			return err
		}
		entries := map[string]string{}
		err = json.Unmarshal(data, &entries)
		if err != nil {
			return err
		}
		for key, translation := range entries {
			err = message.SetString(tag, key, translation)
			if err != nil {
				return err
			}
		}
		if value != defaultLanguage {
			tags = append(tags, tag)
		}
	}

	matcher = language.NewMatcher(tags)
	return err
}

//LocalizeMessage translates messages
//acceptLanguage - Accept-Languages from request header (r.Header.Get("Accept-Language"))
//without a loaded translation the key itself is used
func LocalizeMessage(acceptLanguage string, msg *string, key string) {
	*msg = localize(acceptLanguage, key)
}

func localize(acceptLanguage, key string) string {
	if matcher == nil {
		return key
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		tags = nil
	}
	tag, _, _ := matcher.Match(tags...)
	return message.NewPrinter(tag).Sprintf(key)
}

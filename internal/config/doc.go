// Package config implements the configuration store shared by the ag and agc
// commands.
//
// The configuration is a single JSON document describing named API providers and
// the active default:
//
//	{
//	  "default_model": "gpt-4o",
//	  "current_provider": "openai_official",
//	  "providers": {
//	    "openai_official": {
//	      "api_key": "sk-...",
//	      "api_base": "https://api.openai.com/v1",
//	      "models": ["gpt-4o", "gpt-3.5-turbo"]
//	    }
//	  }
//	}
//
// Providers keep the order in which they appear in the file. Model resolution
// walks them in that order and the first provider listing a model owns it.
//
// Every command invocation is a fresh process: the store reads the whole file on
// Load and rewrites the whole file on Save or Patch. There is no locking, so
// concurrent writers race and the last one wins.
package config

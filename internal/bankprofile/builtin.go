package bankprofile

import "github.com/cambiatec/fiat-notification-reconciler/internal/domain"

// bolivianMarkers covers the amount spellings the local banking apps use.
// "usdt" precedes "usd" so the longer token wins at the same position.
func bolivianMarkers() []AmountMarker {
	return []AmountMarker{
		{Token: "bs.", Currency: domain.CurrencyBOB},
		{Token: "bs", Currency: domain.CurrencyBOB},
		{Token: "bob", Currency: domain.CurrencyBOB},
		{Token: "usdt", Currency: domain.CurrencyUSDT},
		{Token: "usd", Currency: domain.CurrencyUSD},
		{Token: "$us", Currency: domain.CurrencyUSD},
		{Token: "us$", Currency: domain.CurrencyUSD},
		{Token: "sus.", Currency: domain.CurrencyUSD},
	}
}

func spanishNameIntroducers() []string {
	return []string{
		"de parte de ",
		"recibiste de ",
		"remitente: ",
		"ordenante: ",
		"enviado por ",
		"del sr. ",
		"de la sra. ",
		"de ",
	}
}

func spanishReferenceIntroducers() []string {
	return []string{
		"referencia: ",
		"ref: ",
		"ref. ",
		"glosa: ",
		"motivo: ",
		"concepto: ",
		"detalle: ",
	}
}

// Builtin returns the maintained profiles for the Bolivian market. The YAML
// override file can replace or extend these without a rebuild.
func Builtin() []Profile {
	return []Profile{
		{
			BankID:               "bnb",
			DisplayName:          "Banco Nacional de Bolivia",
			SourcePackages:       []string{"bo.com.bnb.movil"},
			Keywords:             []string{"bnb", "banco nacional de bolivia"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "mercantil",
			DisplayName:          "Banco Mercantil Santa Cruz",
			SourcePackages:       []string{"com.mercantilsantacruz.bancamovil"},
			Keywords:             []string{"mercantil santa cruz", "bmsc"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "union",
			DisplayName:          "Banco Unión",
			SourcePackages:       []string{"bo.com.bancounion.unimovil"},
			Keywords:             []string{"banco union", "unimovil", "unired"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "bisa",
			DisplayName:          "Banco BISA",
			SourcePackages:       []string{"com.bisa.appbisa"},
			Keywords:             []string{"banco bisa", "bisa"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "bcp",
			DisplayName:          "Banco de Crédito BCP",
			SourcePackages:       []string{"com.bcp.bo.bancamovil"},
			Keywords:             []string{"bcp", "banco de credito"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "ganadero",
			DisplayName:          "Banco Ganadero",
			SourcePackages:       []string{"bo.com.bg.ganamovil"},
			Keywords:             []string{"banco ganadero", "ganamovil"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "economico",
			DisplayName:          "Banco Económico",
			SourcePackages:       []string{"bo.com.baneco.movil"},
			Keywords:             []string{"banco economico", "baneco"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "bancosol",
			DisplayName:          "BancoSol",
			SourcePackages:       []string{"bo.com.bancosol.appsol"},
			Keywords:             []string{"bancosol"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
		{
			BankID:               "tigo_money",
			DisplayName:          "Tigo Money",
			SourcePackages:       []string{"com.millicom.tigomoney"},
			Keywords:             []string{"tigo money"},
			AmountMarkers:        bolivianMarkers(),
			NameIntroducers:      spanishNameIntroducers(),
			ReferenceIntroducers: spanishReferenceIntroducers(),
		},
	}
}

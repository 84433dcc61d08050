package adapters

import "github.com/ppiankov/juridoc/internal/model"

// CounterclaimTypeName is the document type name of a defence ("Întâmpinare")
const CounterclaimTypeName = "Întâmpinare"

const counterclaimAnnotationSystem = `Ești un asistent inteligent specializat în analiza documentelor juridice. Poți extrage și identifica diferite tipuri de entități și informații din documentele juridice românești. Vei răspunde doar cu entitățile extrase, fără a altera textul original. Textul de intrare va avea paragrafele separate prin tagurile <p> și </p>. Entitățile extrase vor conține aceste taguri.`

const counterclaimSummarySystem = `Ești un asistent inteligent specializat în rezumarea și corectarea documentelor juridice românești.`

var counterclaimAnnotationModels = map[model.EntityType]string{
	model.EntityTemei:     "counterclaim-istemei",
	model.EntityProba:     "counterclaim-isproba",
	model.EntitySelected:  "counterclaim-isselect",
	model.EntityCerere:    "counterclaim-iscerere",
	model.EntityReclamant: "counterclaim-isreclamant",
	model.EntityParat:     "counterclaim-isparat",
}

var counterclaimSummaryModels = map[model.EntityType]string{
	model.EntityTemei:     "meta-llama/Llama-3.1-8B-Instruct",
	model.EntityProba:     "meta-llama/Llama-3.1-8B-Instruct",
	model.EntitySelected:  "meta-llama/Llama-3.1-8B-Instruct",
	model.EntityCerere:    "rewrite-cerere",
	model.EntityReclamant: "meta-llama/Llama-3.1-8B-Instruct",
	model.EntityParat:     "meta-llama/Llama-3.1-8B-Instruct",
}

var counterclaimAnnotationPrompts = map[model.EntityType]string{
	model.EntityTemei: `Extrage temeiul legal din documentul de mai sus. Temeiul legal reprezintă fundamentul juridic al unei cereri sau acțiuni - articolele de lege, ordonanțele, codurile și actele normative pe care se bazează argumentația. De obicei este introdus prin formulări precum "În drept", "invocăm", "ne întemeiem", "drept, în art.", "Îmi întemeiez cererea pe" sau "Pe temeiul". Exemple de temeuri legale: "În drept, art.31 din OG2/2001", "drept, în art. 31 şi 32 din O.G. nr. 2/2001 (actualizată)", "În drept. îmi întemeiez cererea pe dispozițiile art. 31-36 din O.G. nr. 2/2001 privind regimul juridic al contravențiilor, art. 6 din Convenția Europeană a Drepturilor Omului și art. 118 din O.U.G. Nr 195/2002 privind circulația pe drumurile publice". Identifică și extrage toate referințele la acte normative, inclusiv numărul articolului, denumirea și numărul actului normativ.`,

	model.EntityProba: `Extrage dovezile și probele menționate în documentul de mai jos. Acestea pot include documente, contracte, facturi, martori, expertize, înscrisuri sau alte mijloace de probă care susțin cauza. Deseori sunt introduse prin formulări precum "în probațiune" sau "dovedire", "interogatoriu", "în conformitate cu ... anexăm", "înscrisuri".`,

	model.EntitySelected: `Extrage descrierea faptelor și cicumstanțelor din documentul de mai sus. De obicei, aceste informații sunt introduse prin "În fapt", "Astfel", "La data de" și descriu versiunea părții pârâte despre evenimentele care au dus la conflictul juridic.`,

	model.EntityCerere: `Extrage cererea propriu-zisă din documentul de mai sus - ce anume se solicită de la instanță (respingerea unei acțiuni sau plângeri, anularea unui act, admitere, executarea unei obligații, etc.). In general, cererea este introdusă prin formulări precum "în temeiul celor de mai sus, solicit", "solicit", "în consecință, solicit", "solicit să se dispună", "solicit să se oblige", "solicit să se constate", etc.`,

	model.EntityReclamant: `Extrage informațiile despre reclamant din documentul de mai sus (partea care a scris această întâmpinare, fie o persoană, fie o entitate precum o instituție sau o persoană juridică). De obicei este introdus prin "petent", "in contradictoriu cu", "contestatorul", "numitul", "reclamantul". Ne interesează doar numele complet.`,

	model.EntityParat: `Extrage numele despre entitatea care se apara in documentul de mai sus (partea care se apără în această întâmpinare, care a scris documentul; pot fi mai multe părți, fie persoane fizice, fie entități precum instituții sau persoane juridice). De obicei, este introdus prin „subsemnatul" și se află în prima parte a documentului. Ne interesează doar numele complet si nemodificat.`,
}

var counterclaimSummaryPrompts = map[model.EntityType]string{
	model.EntityTemei: `Corecteaza textul temeiului legal dacă este cazul, acesta ar trebui să fie la persoana a III-a, forma pasivă, timpul perfect compus și este introdus prin "În drept".
De exemplu, "În drept, au fost invocate următoarele prevederi...". Vei răspunde doar cu textul corectat, fără alte explicații.`,

	model.EntityProba: `Corectează textul probei dacă este cazul, acesta ar trebui să fie la persoana a III-a, forma pasivă, timpul perfect compus și este introdus prin "În probațiune,".
Vei răspunde doar cu textul corectat, fără alte explicații.`,

	model.EntitySelected: `Rezumă descrierea faptelor și circumstanțelor descrise de pârât în textul extras de mai sus, care să cuprindă toate argumentele esențiale.
Rezumatul va trebui scris la persoana a III-a, forma activă, modul indicativ și timpul perfect compus.
Textul va fi structurat in paragrafe, fiecare corespunzând unei idei principale. 
Pentru a reflecta clar poziția procesuală a părții, fiecare paragraf argumentativ (idee principală) va utiliza expresii de tipul: „A arătat că”, „A susținut că”, „A învederat că”, „A menționat că”, „A expus faptul că”, „A relatat că”.
Textul va fi introdus prin „În motivare,”.
Vei răspunde doar cu textul rezumat, fără alte explicații.`,

	model.EntityCerere: `Corecteaza textul cererii de mai sus dacă este cazul, acesta ar trebui să fie la persoana a III-a, forma activa, timpul trecut, perfect compus cu diacritice. Vor fi folosite pronume demonstrative, persoana a III-a, (e.g., acestora, acestuia). De exemplu, noastră se va transforma in acestora.
Cine a scris cererea: "{isReclamant}". 
Textul corectat va incepe mereu cu „a solicitat" sau „au solicitat". Pentru un reclamant (e.g. un singur nume de persoana, companie, institutie), va incepe cu "a solicitat", pentru mai multi reclamanti cu "au solicitat".
Vei răspunde doar cu textul corectat, fără alte explicații.`,

	model.EntityReclamant: `Textul de mai sus conține unul sau mai multe nume de persoane/instituții. Va trebui să le formatezi pentru a avea o listă clară, separată prin virgulă. Vei răspunde doar cu lista, fără alte explicații.`,

	model.EntityParat: `Textul de mai sus conține mai multe nume de persoane/instituții. Vreau să le formatăm pentru a avea o listă clară, separată prin virgulă. Vei răspunde doar cu lista, fără alte explicații.`,
}

// CounterclaimAdapter handles the defendant's answer to a claim.
// Its rewrite prompts already ask for the "a solicitat" form, so the base
// post-processing is enough.
type CounterclaimAdapter struct {
	BaseAdapter
}

// NewCounterclaimAdapter creates a new counterclaim adapter
func NewCounterclaimAdapter() *CounterclaimAdapter {
	return &CounterclaimAdapter{
		BaseAdapter: BaseAdapter{
			name:              "counterclaim",
			typeName:          CounterclaimTypeName,
			annotationSystem:  counterclaimAnnotationSystem,
			summarySystem:     counterclaimSummarySystem,
			annotationModels:  counterclaimAnnotationModels,
			summaryModels:     counterclaimSummaryModels,
			annotationPrompts: counterclaimAnnotationPrompts,
			summaryPrompts:    counterclaimSummaryPrompts,
		},
	}
}

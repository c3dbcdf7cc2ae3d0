package graph

// Query names used as metric labels.
const (
	queryListIndividuals   = "list_individuals"
	queryIndividualDetails = "individual_details"
	queryListTaxonomies    = "list_taxonomies"
	queryOntologyMetadata  = "ontology_metadata"
)

// TaxonomyClassCurie is the class every taxonomy individual instantiates.
const TaxonomyClassCurie = "PCL:0010002"

const listIndividualsQuery = `
MATCH (i:Individual)
WHERE i.cell_type_rank IS NOT NULL
RETURN DISTINCT i.curie AS curie
ORDER BY curie
`

const individualDetailsQuery = `
MATCH (i:Individual)
WHERE i.curie = 'PCL:' + $accession
OPTIONAL MATCH (i)-[:exemplar_data_of]->(c:Class)
OPTIONAL MATCH (c)-[scr:SUBCLASSOF]->(parent)
OPTIONAL MATCH (c)-[er:expresses]->(marker)
OPTIONAL MATCH (c)-[:SUBCLASSOF*]->()-[erp:expresses]->(parent_marker)
OPTIONAL MATCH (c)-[src:source]->(reference)
OPTIONAL MATCH (c)-[:in_taxon]->(in_taxon)
OPTIONAL MATCH (c)-[:SUBCLASSOF*]->()-[:in_taxon]->(in_taxon_parent)
OPTIONAL MATCH (c)-[:has_soma_location]->(soma_location)
OPTIONAL MATCH (c)-[:SUBCLASSOF*]->()-[:has_soma_location]->(parent_soma_location)
OPTIONAL MATCH (c)-[:in_historical_homology_relationship_with]->(homologous_to)
OPTIONAL MATCH (c)-[:SUBCLASSOF*]->(pc:Class)<-[:exemplar_data_of]-(pi:Individual)
RETURN apoc.map.mergeList([properties(i), {tags: labels(i)}]) AS indv_metadata,
collect(distinct {tags: labels(c), class_metadata: properties(c)}) AS class_metadata,
collect(distinct {relation: properties(scr), class_metadata: properties(parent)}) AS parents,
collect(distinct {relation: properties(er), class_metadata: properties(marker)}) AS markers,
collect(distinct {relation: properties(erp), class_metadata: properties(parent_marker)}) AS parent_markers,
collect(distinct {relation: properties(src), class_metadata: properties(reference)}) AS references,
collect(distinct {taxon: properties(in_taxon), parent_taxon: properties(in_taxon_parent)}) AS taxonomy,
collect(distinct {soma_location: properties(soma_location), parent_soma_location: properties(parent_soma_location)}) AS region,
collect(distinct {class_metadata: properties(homologous_to)}) AS homologous_to,
collect(distinct {class_metadata: properties(pc), indv_metadata: properties(pi)}) AS parent_clusters
`

const listTaxonomiesQuery = `
MATCH (i:Individual)-[]->(c:Class)
WHERE c.curie = $taxonomy_class
OPTIONAL MATCH (i)-[:has_dataset]->(ds)
OPTIONAL MATCH (i)-[src:source]->(reference)
RETURN properties(i) AS taxonomy,
collect(distinct {dataset_metadata: properties(ds)}) AS datasets,
collect(distinct {relation: properties(src), class_metadata: properties(reference)}) AS references
ORDER BY taxonomy.label
`

const ontologyMetadataQuery = `
MATCH (ontology:Ontology)
RETURN properties(ontology) AS ont_metadata
LIMIT 1
`
